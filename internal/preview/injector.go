// Package preview fronts the target dev server with a reverse proxy,
// injects the selection script into its HTML, and bridges the injected
// script back to the host over a WebSocket.
package preview

import (
	"bytes"
	"strings"

	"github.com/vizedit/vizedit/internal/preview/scripts"
)

// ScriptPath is the well-known path the selection script is served from,
// used both by the injected tag and by the script-delivery fallback.
const ScriptPath = "/__vizedit/selection.js"

// Html2canvasURL is the rasterization library the selection script uses
// for captures.
const Html2canvasURL = "https://cdn.jsdelivr.net/npm/html2canvas@1.4.1/dist/html2canvas.min.js"

// scriptTag is what actually lands in the page. html2canvas loads first so
// capture requests never race the library.
func scriptTag() string {
	return "\n<script src=\"" + Html2canvasURL + "\"></script>\n" +
		"<script src=\"" + ScriptPath + "\"></script>\n"
}

// InlineScript returns the full selection script for delivery over the
// bridge when tag injection was not possible.
func InlineScript() string {
	return scripts.SelectionScript()
}

// Inject adds the selection script tag to an HTML document. Placement
// falls back through progressively cruder anchors so malformed documents
// still get instrumented.
func Inject(body []byte) []byte {
	tag := []byte(scriptTag())

	// Before </head> is the preferred spot.
	if idx := bytes.Index(body, []byte("</head>")); idx != -1 {
		return splice(body, tag, idx)
	}

	// After <head>
	if idx := bytes.Index(body, []byte("<head>")); idx != -1 {
		return splice(body, tag, idx+len("<head>"))
	}

	// After the opening <body ...> tag
	if idx := bytes.Index(body, []byte("<body")); idx != -1 {
		if end := bytes.Index(body[idx:], []byte(">")); end != -1 {
			return splice(body, tag, idx+end+1)
		}
	}

	// After the opening <html ...> tag
	if idx := bytes.Index(body, []byte("<html")); idx != -1 {
		if end := bytes.Index(body[idx:], []byte(">")); end != -1 {
			return splice(body, tag, idx+end+1)
		}
	}

	// Last resort: prepend.
	return append(tag, body...)
}

func splice(body, tag []byte, at int) []byte {
	result := make([]byte, 0, len(body)+len(tag))
	result = append(result, body[:at]...)
	result = append(result, tag...)
	result = append(result, body[at:]...)
	return result
}

// ShouldInject reports whether a response content type is injectable HTML.
func ShouldInject(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
