package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizedit/vizedit/internal/protocol"
)

// EditInput represents input for the edit tool.
type EditInput struct {
	Action   string `json:"action" jsonschema:"Action: apply, undo, redo, undo_n, jump"`
	Kind     string `json:"kind,omitempty" jsonschema:"Change kind for apply: style, class, text, html, delete"`
	Property string `json:"property,omitempty" jsonschema:"CSS property (style changes only)"`
	Value    string `json:"value,omitempty" jsonschema:"New value; class changes accept +name, -name, or a full replacement"`
	Count    int    `json:"count,omitempty" jsonschema:"Number of undos for undo_n"`
	Index    int    `json:"index,omitempty" jsonschema:"Timeline index for jump"`
}

// EditOutput represents output from the edit tool.
type EditOutput struct {
	Success   bool   `json:"success"`
	Performed int    `json:"performed,omitempty"`
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
	Position  int    `json:"position"`
	Message   string `json:"message,omitempty"`
}

// RegisterEditTool registers the edit MCP tool with the server.
func RegisterEditTool(server *mcp.Server, et *EditorTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "edit",
		Description: `Apply a visual change to the currently selected element, or replay history.

Actions:
  apply: Mutate the selected element (requires kind and value; property for style)
  undo: Revert the most recent change
  redo: Reapply the most recently undone change
  undo_n: Undo up to count changes, reporting how many succeeded
  jump: Replay history to put the cursor at a timeline index

Examples:
  edit {action: "apply", kind: "style", property: "color", value: "red"}
  edit {action: "apply", kind: "class", value: "+highlighted"}
  edit {action: "apply", kind: "text", value: "Get started"}
  edit {action: "apply", kind: "delete"}
  edit {action: "undo"}
  edit {action: "undo_n", count: 5}
  edit {action: "jump", index: 2}

Apply is a no-op when nothing is selected; select an element in the
preview first. Undo and redo return success=false on empty stacks.`,
	}, et.makeEditHandler())
}

func (et *EditorTools) makeEditHandler() func(context.Context, *mcp.CallToolRequest, EditInput) (*mcp.CallToolResult, EditOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EditInput) (*mcp.CallToolResult, EditOutput, error) {
		var out EditOutput

		switch input.Action {
		case "apply":
			kind := protocol.Kind(input.Kind)
			if !kind.Appliable() {
				return errorResult(fmt.Sprintf("unsupported kind %q. Use: style, class, text, html, delete", input.Kind)), out, nil
			}
			out.Success = et.Engine.ApplyChange(ctx, kind, input.Property, input.Value)
			if !out.Success {
				out.Message = "change not applied: no preview attached, nothing selected, or target missing"
			}
		case "undo":
			out.Success = et.Engine.Undo(ctx)
			if !out.Success {
				out.Message = "nothing to undo"
			}
		case "redo":
			out.Success = et.Engine.Redo(ctx)
			if !out.Success {
				out.Message = "nothing to redo"
			}
		case "undo_n":
			if input.Count <= 0 {
				return errorResult("undo_n requires count > 0"), out, nil
			}
			out.Performed = et.Engine.UndoN(ctx, input.Count)
			out.Success = true
		case "jump":
			out.Success = et.Engine.JumpTo(ctx, input.Index)
			if !out.Success {
				out.Message = fmt.Sprintf("index %d outside the timeline", input.Index)
			}
		default:
			return errorResult(fmt.Sprintf("unknown action %q. Use: apply, undo, redo, undo_n, jump", input.Action)), out, nil
		}

		state := et.History.State()
		out.CanUndo = state.CanUndo
		out.CanRedo = state.CanRedo
		out.Position = state.Position
		return nil, out, nil
	}
}
