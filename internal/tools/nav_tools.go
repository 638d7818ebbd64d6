package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NavigateInput represents input for the navigate tool.
type NavigateInput struct {
	Action string `json:"action" jsonschema:"Action: to, back, forward, refresh, list"`
	URL    string `json:"url,omitempty" jsonschema:"Target URL (required for to)"`
}

// NavEntryOutput is one history list entry.
type NavEntryOutput struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// NavigateOutput represents output from the navigate tool.
type NavigateOutput struct {
	Success      bool             `json:"success"`
	URL          string           `json:"url,omitempty"`
	CanGoBack    bool             `json:"can_go_back"`
	CanGoForward bool             `json:"can_go_forward"`
	Entries      []NavEntryOutput `json:"entries,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// RegisterNavigateTool registers the navigate MCP tool with the server.
func RegisterNavigateTool(server *mcp.Server, et *EditorTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "navigate",
		Description: `Drive the preview's URL and back/forward history.

Actions:
  to: Navigate to a URL (javascript:, data:, vbscript: and file: schemes are rejected)
  back: Go back one entry
  forward: Go forward one entry
  refresh: Reload the current URL without touching history
  list: Show the history list with the current entry marked

Examples:
  navigate {action: "to", url: "/settings"}
  navigate {action: "back"}
  navigate {action: "list"}`,
	}, et.makeNavigateHandler())
}

func (et *EditorTools) makeNavigateHandler() func(context.Context, *mcp.CallToolRequest, NavigateInput) (*mcp.CallToolResult, NavigateOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NavigateInput) (*mcp.CallToolResult, NavigateOutput, error) {
		var out NavigateOutput

		switch input.Action {
		case "to":
			if input.URL == "" {
				return errorResult("navigate to requires a url"), out, nil
			}
			out.Success = et.Nav.NavigateTo(input.URL, "")
			if !out.Success {
				out.Message = fmt.Sprintf("navigation to %q blocked", input.URL)
			}
		case "back":
			out.Success = et.Nav.GoBack()
			if !out.Success {
				out.Message = "already at the start of history"
			}
		case "forward":
			out.Success = et.Nav.GoForward()
			if !out.Success {
				out.Message = "already at the end of history"
			}
		case "refresh":
			out.Success = et.Nav.Refresh()
			if !out.Success {
				out.Message = "no page to refresh"
			}
		case "list":
			cursor := et.Nav.Cursor()
			for i, entry := range et.Nav.Entries() {
				out.Entries = append(out.Entries, NavEntryOutput{
					URL:     entry.URL,
					Title:   entry.Title,
					Current: i == cursor,
				})
			}
			out.Success = true
		default:
			return errorResult(fmt.Sprintf("unknown action %q. Use: to, back, forward, refresh, list", input.Action)), out, nil
		}

		if current, ok := et.Nav.Current(); ok {
			out.URL = current.URL
		}
		out.CanGoBack = et.Nav.CanGoBack()
		out.CanGoForward = et.Nav.CanGoForward()
		return nil, out, nil
	}
}
