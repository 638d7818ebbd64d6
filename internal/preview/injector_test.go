package preview

import (
	"strings"
	"testing"
)

func TestInjectPlacement(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		before string
	}{
		{
			name:   "before closing head",
			body:   `<html><head><title>x</title></head><body></body></html>`,
			before: "</head>",
		},
		{
			name:   "after opening head when unclosed",
			body:   `<html><head><body></body></html>`,
			before: "<body>",
		},
		{
			name:   "after body tag when no head",
			body:   `<html><body class="app"><div></div></body></html>`,
			before: "<div>",
		},
		{
			name:   "after html tag when no head or body",
			body:   `<html lang="en"><div></div></html>`,
			before: "<div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(Inject([]byte(tt.body)))
			scriptIdx := strings.Index(out, ScriptPath)
			if scriptIdx == -1 {
				t.Fatal("script tag not injected")
			}
			anchorIdx := strings.Index(out, tt.before)
			if anchorIdx == -1 {
				t.Fatalf("anchor %q lost during injection", tt.before)
			}
			if scriptIdx > anchorIdx {
				t.Errorf("script injected after %q:\n%s", tt.before, out)
			}
		})
	}
}

func TestInjectPrependFallback(t *testing.T) {
	out := string(Inject([]byte("plain fragment")))
	if !strings.HasPrefix(out, "\n<script") {
		t.Errorf("fragment not prepended with script tag: %.60s", out)
	}
	if !strings.HasSuffix(out, "plain fragment") {
		t.Errorf("original content lost: %s", out)
	}
}

func TestInjectLoadsHtml2canvasFirst(t *testing.T) {
	out := string(Inject([]byte(`<html><head></head></html>`)))
	libIdx := strings.Index(out, "html2canvas")
	selIdx := strings.Index(out, ScriptPath)
	if libIdx == -1 || selIdx == -1 {
		t.Fatal("missing script tags")
	}
	if libIdx > selIdx {
		t.Error("selection script loads before html2canvas")
	}
}

func TestShouldInject(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/json", false},
		{"text/css", false},
		{"application/javascript", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ShouldInject(tt.contentType); got != tt.expected {
			t.Errorf("ShouldInject(%q) = %v; want %v", tt.contentType, got, tt.expected)
		}
	}
}
