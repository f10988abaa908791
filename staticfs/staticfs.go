// Package staticfs serves static files under a mount prefix from a
// directory root, rejecting path traversal and (by default) dotfiles,
// with a closed MIME table.
package staticfs

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
)

// Options configures a static mount.
type Options struct {
	IndexFile   string // default "index.html"
	DotFiles    bool   // serve paths whose final segment starts with '.'
	EnableETag  bool
	EnableCache bool
	MaxAge      int // seconds; only meaningful when EnableCache
}

// DefaultOptions returns the default mount options.
func DefaultOptions() Options {
	return Options{
		IndexFile: "index.html",
		MaxAge:    3600,
	}
}

// Handler serves files under dirPath for requests whose path has the
// mountPath prefix. One Handler covers both the exact mount path and every
// sub-path; callers mount it at mountPath in their router.
type Handler struct {
	mountPath string
	dirPath   string
	opts      Options
}

// New builds a static file Handler. A zero-value Options.IndexFile is
// replaced with "index.html".
func New(mountPath, dirPath string, opts Options) *Handler {
	if opts.IndexFile == "" {
		opts.IndexFile = "index.html"
	}
	return &Handler{
		mountPath: strings.TrimSuffix(mountPath, "/"),
		dirPath:   strings.TrimSuffix(dirPath, "/"),
		opts:      opts,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	relPath := strings.TrimPrefix(r.URL.Path, h.mountPath)
	relPath = strings.TrimPrefix(relPath, "/")

	if !h.opts.DotFiles && relPath != "" && strings.HasPrefix(path.Base(relPath), ".") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	isDir := relPath == "" || strings.HasSuffix(relPath, "/")
	var filePath string
	if isDir {
		filePath = h.dirPath + "/" + relPath + h.opts.IndexFile
	} else {
		filePath = h.dirPath + "/" + relPath
	}

	if !isSafePath(filePath) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mimeType(filePath))
	if h.opts.EnableCache {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.opts.MaxAge))
	}
	if h.opts.EnableETag {
		w.Header().Set("ETag", weakETag(data))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// isSafePath rejects ".." and "//" anywhere in the resolved path. It is
// a substring check, not a symlink-aware containment check.
func isSafePath(p string) bool {
	return !strings.Contains(p, "..") && !strings.Contains(p, "//")
}

// weakETag is a cheap, stable identifier derived from content length and a
// multiply-by-31 checksum over every byte — good enough for dev-server
// caching without pulling in a hashing dependency.
func weakETag(data []byte) string {
	var sum uint32
	for _, b := range data {
		sum = sum*31 + uint32(b)
	}
	return `W/"` + strconv.Itoa(len(data)) + "-" + strconv.FormatUint(uint64(sum), 16) + `"`
}

// mimeType looks the extension up in a closed table, falling back to
// application/octet-stream for anything it doesn't recognize.
func mimeType(filePath string) string {
	ext := path.Ext(filePath)
	if t, ok := mimeTable[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

var mimeTable = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",

	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".webp": "image/webp",

	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",

	".pdf": "application/pdf",
	".txt": "text/plain",

	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
}
