package core

// Canned JSON responses for the most common REST status replies. The
// bodies are encoded once at startup, so sending one costs no JSON
// encoding and no allocation per request.

var (
	jsonOKBytes       = []byte(`{"ok":true}`)
	jsonCreatedBytes  = []byte(`{"created":true}`)
	jsonAcceptedBytes = []byte(`{"accepted":true}`)

	json400Bytes = []byte(`{"error":"Bad Request"}`)
	json401Bytes = []byte(`{"error":"Unauthorized"}`)
	json403Bytes = []byte(`{"error":"Forbidden"}`)
	json404Bytes = []byte(`{"error":"Not Found"}`)
	json429Bytes = []byte(`{"error":"Too Many Requests"}`)
	json500Bytes = []byte(`{"error":"Internal Server Error"}`)
)

func (c *Context) canned(status int, body []byte) error {
	if c.written {
		return nil
	}
	c.setContentTypeJSON()
	c.statusCode = status
	c.written = true

	if c.httpRes == nil {
		return nil
	}
	c.httpRes.WriteHeader(status)
	_, err := c.httpRes.Write(body)
	return err
}

// JSONOK sends {"ok":true} with 200 status.
func (c *Context) JSONOK() error { return c.canned(200, jsonOKBytes) }

// JSONCreated sends {"created":true} with 201 status.
func (c *Context) JSONCreated() error { return c.canned(201, jsonCreatedBytes) }

// JSONAccepted sends {"accepted":true} with 202 status.
func (c *Context) JSONAccepted() error { return c.canned(202, jsonAcceptedBytes) }

// JSONBadRequest sends {"error":"Bad Request"} with 400 status.
func (c *Context) JSONBadRequest() error { return c.canned(400, json400Bytes) }

// JSONUnauthorized sends {"error":"Unauthorized"} with 401 status.
func (c *Context) JSONUnauthorized() error { return c.canned(401, json401Bytes) }

// JSONForbidden sends {"error":"Forbidden"} with 403 status.
func (c *Context) JSONForbidden() error { return c.canned(403, json403Bytes) }

// JSONNotFound sends {"error":"Not Found"} with 404 status.
func (c *Context) JSONNotFound() error { return c.canned(404, json404Bytes) }

// JSONTooManyRequests sends {"error":"Too Many Requests"} with 429 status.
func (c *Context) JSONTooManyRequests() error { return c.canned(429, json429Bytes) }

// JSONInternalError sends {"error":"Internal Server Error"} with 500
// status.
func (c *Context) JSONInternalError() error { return c.canned(500, json500Bytes) }
