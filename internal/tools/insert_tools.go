package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizedit/vizedit/internal/insert"
)

// InsertInput represents input for the insert tool.
type InsertInput struct {
	Action    string  `json:"action" jsonschema:"Action: drop, archetypes, recent"`
	Archetype string  `json:"archetype,omitempty" jsonschema:"Component archetype (required for drop)"`
	X         float64 `json:"x,omitempty" jsonschema:"Drop x coordinate in the preview viewport"`
	Y         float64 `json:"y,omitempty" jsonschema:"Drop y coordinate in the preview viewport"`
}

// InsertOutput represents output from the insert tool.
type InsertOutput struct {
	Success    bool     `json:"success"`
	TestID     string   `json:"test_id,omitempty"`
	Anchor     string   `json:"anchor,omitempty"`
	Position   string   `json:"position,omitempty"`
	Archetypes []string `json:"archetypes,omitempty"`
	Recent     []string `json:"recent,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// RegisterInsertTool registers the insert MCP tool with the server.
func RegisterInsertTool(server *mcp.Server, et *EditorTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "insert",
		Description: `Insert a component into the preview at a drop coordinate.

Actions:
  drop: Hit-test the coordinate and insert the archetype there
  archetypes: List available archetypes
  recent: List recently inserted archetypes, newest first

The insertion anchor follows the element under the coordinate: empty
containers receive the new node as a child, everything else gets it as a
following sibling. Unknown archetypes insert a placeholder div.

Examples:
  insert {action: "drop", archetype: "heading", x: 320, y: 180}
  insert {action: "archetypes"}
  insert {action: "recent"}`,
	}, et.makeInsertHandler())
}

func (et *EditorTools) makeInsertHandler() func(context.Context, *mcp.CallToolRequest, InsertInput) (*mcp.CallToolResult, InsertOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input InsertInput) (*mcp.CallToolResult, InsertOutput, error) {
		var out InsertOutput

		switch input.Action {
		case "drop":
			if input.Archetype == "" {
				return errorResult("drop requires an archetype"), out, nil
			}
			sent, err := et.Insert.Drop(ctx, input.Archetype, input.X, input.Y)
			if errors.Is(err, insert.ErrNoTarget) {
				out.Message = "no element at the drop coordinate"
				return nil, out, nil
			}
			if err != nil {
				return errorResult(fmt.Sprintf("drop failed: %v", err)), out, nil
			}
			out.Success = true
			out.TestID = sent.TestID
			out.Anchor = sent.AnchorSelector
			out.Position = sent.Position
		case "archetypes":
			names := insert.Names()
			sort.Strings(names)
			out.Archetypes = names
			out.Success = true
		case "recent":
			out.Recent = et.Insert.Recent()
			out.Success = true
		default:
			return errorResult(fmt.Sprintf("unknown action %q. Use: drop, archetypes, recent", input.Action)), out, nil
		}

		return nil, out, nil
	}
}
