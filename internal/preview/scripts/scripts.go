// Package scripts embeds the JavaScript injected into the preview page.
package scripts

import _ "embed"

//go:embed selection.js
var selectionJS string

// SelectionScript returns the selection and mutation script source.
func SelectionScript() string {
	return selectionJS
}
