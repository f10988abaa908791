package core

// Shared Content-Type value slices, assigned directly into the response
// header map under its canonical key. Writing the map entry ourselves
// skips net/textproto's canonicalization and validation on a key we
// already know is canonical, and reusing one slice per value means no
// allocation per request.
var (
	contentTypeJSONSlice = []string{"application/json"}
	contentTypeTextSlice = []string{"text/plain; charset=utf-8"}
	contentTypeHTMLSlice = []string{"text/html; charset=utf-8"}
)

func (c *Context) setContentType(slice []string, value string) {
	if c.httpRes != nil {
		c.httpRes.Header()["Content-Type"] = slice
		return
	}
	if c.testResHeaders == nil {
		c.testResHeaders = make(map[string]string, 4)
	}
	c.testResHeaders["Content-Type"] = value
}

func (c *Context) setContentTypeJSON() {
	c.setContentType(contentTypeJSONSlice, "application/json")
}

func (c *Context) setContentTypeText() {
	c.setContentType(contentTypeTextSlice, "text/plain; charset=utf-8")
}

func (c *Context) setContentTypeHTML() {
	c.setContentType(contentTypeHTMLSlice, "text/html; charset=utf-8")
}
