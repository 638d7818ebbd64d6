package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizedit/vizedit/internal/history"
	"github.com/vizedit/vizedit/internal/protocol"
)

// HistoryInput represents input for the history tool.
type HistoryInput struct {
	Action      string `json:"action" jsonschema:"Action: timeline, search, export, state"`
	Kind        string `json:"kind,omitempty" jsonschema:"Filter: change kind"`
	Selector    string `json:"selector,omitempty" jsonschema:"Filter: target selector substring"`
	Property    string `json:"property,omitempty" jsonschema:"Filter: property name"`
	Description string `json:"description,omitempty" jsonschema:"Filter: free-text description match"`
}

// HistoryEntryOutput is one timeline entry.
type HistoryEntryOutput struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Kind        string `json:"kind"`
	Selector    string `json:"selector"`
	Property    string `json:"property,omitempty"`
	OldValue    string `json:"old_value"`
	NewValue    string `json:"new_value"`
	Description string `json:"description"`
}

// HistoryOutput represents output from the history tool.
type HistoryOutput struct {
	Entries  []HistoryEntryOutput `json:"entries,omitempty"`
	Export   string               `json:"export,omitempty"`
	CanUndo  bool                 `json:"can_undo"`
	CanRedo  bool                 `json:"can_redo"`
	Position int                  `json:"position"`
	Count    int                  `json:"count"`
}

// RegisterHistoryTool registers the history MCP tool with the server.
func RegisterHistoryTool(server *mcp.Server, et *EditorTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "history",
		Description: `Query the undo/redo history.

Actions:
  timeline: Full chronological history (undo stack then undone entries)
  search: Filter entries; all given filters must match (AND)
  export: JSON export of both stacks for auditing (not a restore format)
  state: Just the cursor position and undo/redo availability

Examples:
  history {action: "timeline"}
  history {action: "search", kind: "style", selector: "#hero"}
  history {action: "search", description: "color"}
  history {action: "export"}`,
	}, et.makeHistoryHandler())
}

func (et *EditorTools) makeHistoryHandler() func(context.Context, *mcp.CallToolRequest, HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		var out HistoryOutput

		switch input.Action {
		case "timeline":
			out.Entries = entryOutputs(et.History.Timeline())
		case "search":
			out.Entries = entryOutputs(et.History.Search(history.Filter{
				Kind:        protocol.Kind(input.Kind),
				Selector:    input.Selector,
				Property:    input.Property,
				Description: input.Description,
			}))
		case "export":
			data, err := et.History.Export()
			if err != nil {
				return errorResult(fmt.Sprintf("export failed: %v", err)), out, nil
			}
			out.Export = string(data)
		case "state":
			// State fields are filled below for every action.
		default:
			return errorResult(fmt.Sprintf("unknown action %q. Use: timeline, search, export, state", input.Action)), out, nil
		}

		state := et.History.State()
		out.CanUndo = state.CanUndo
		out.CanRedo = state.CanRedo
		out.Position = state.Position
		out.Count = len(out.Entries)
		return nil, out, nil
	}
}

func entryOutputs(entries []history.Entry) []HistoryEntryOutput {
	outs := make([]HistoryEntryOutput, 0, len(entries))
	for _, e := range entries {
		outs = append(outs, HistoryEntryOutput{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			Kind:        string(e.Kind),
			Selector:    e.Target.Selector,
			Property:    e.Property,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			Description: e.Description,
		})
	}
	return outs
}
