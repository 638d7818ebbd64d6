// Package tools exposes the editor over MCP so an agent can drive visual
// edits, history, navigation, and insertion.
package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizedit/vizedit/internal/assist"
	"github.com/vizedit/vizedit/internal/editor"
	"github.com/vizedit/vizedit/internal/history"
	"github.com/vizedit/vizedit/internal/insert"
	"github.com/vizedit/vizedit/internal/nav"
	"github.com/vizedit/vizedit/internal/tracker"
)

// EditorTools bundles the engines the MCP handlers drive.
type EditorTools struct {
	Engine     *editor.Engine
	History    *history.Store
	Nav        *nav.Tracker
	Insert     *insert.Engine
	Edits      *tracker.Tracker
	Summarizer *assist.Summarizer
}

// RegisterAll registers every editor tool with the server.
func RegisterAll(server *mcp.Server, et *EditorTools) {
	RegisterEditTool(server, et)
	RegisterHistoryTool(server, et)
	RegisterNavigateTool(server, et)
	RegisterInsertTool(server, et)
	RegisterEditsTool(server, et)
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
