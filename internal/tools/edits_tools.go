package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vizedit/vizedit/internal/tracker"
)

// EditsInput represents input for the edits tool.
type EditsInput struct {
	Action string `json:"action" jsonschema:"Action: list, summarize, clear"`
}

// EditOutputRecord is one audit-log entry.
type EditOutputRecord struct {
	ID          string            `json:"id"`
	Timestamp   int64             `json:"timestamp"`
	Element     string            `json:"element,omitempty"`
	ChangeType  string            `json:"change_type"`
	Changes     map[string]string `json:"changes,omitempty"`
	Description string            `json:"description,omitempty"`
}

// EditsOutput represents output from the edits tool.
type EditsOutput struct {
	Success bool               `json:"success"`
	Edits   []EditOutputRecord `json:"edits,omitempty"`
	Total   int                `json:"total"`
	Summary string             `json:"summary,omitempty"`
	Message string             `json:"message,omitempty"`
}

// RegisterEditsTool registers the edits MCP tool with the server.
func RegisterEditsTool(server *mcp.Server, et *EditorTools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "edits",
		Description: `Read the session's flat edit audit log.

This log is independent of undo/redo: undone changes stay in it as undo
entries, so it reflects everything that actually happened this session.

Actions:
  list: All retained edits, oldest first, plus the lifetime total
  summarize: Natural-language summary of the session's edits
  clear: Empty the log

Examples:
  edits {action: "list"}
  edits {action: "summarize"}`,
	}, et.makeEditsHandler())
}

func (et *EditorTools) makeEditsHandler() func(context.Context, *mcp.CallToolRequest, EditsInput) (*mcp.CallToolResult, EditsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EditsInput) (*mcp.CallToolResult, EditsOutput, error) {
		var out EditsOutput

		switch input.Action {
		case "list":
			for _, edit := range et.Edits.Edits() {
				out.Edits = append(out.Edits, editRecord(edit))
			}
			out.Total = et.Edits.Total()
			out.Success = true
		case "summarize":
			if et.Summarizer == nil {
				return errorResult("summarizer unavailable: set ANTHROPIC_API_KEY"), out, nil
			}
			summary, err := et.Summarizer.Summarize(ctx, et.Edits.Edits())
			if err != nil {
				return errorResult(fmt.Sprintf("summarize failed: %v", err)), out, nil
			}
			out.Summary = summary
			out.Total = et.Edits.Total()
			out.Success = true
		case "clear":
			if err := et.Edits.Clear(); err != nil {
				return errorResult(fmt.Sprintf("clear failed: %v", err)), out, nil
			}
			out.Success = true
		default:
			return errorResult(fmt.Sprintf("unknown action %q. Use: list, summarize, clear", input.Action)), out, nil
		}

		return nil, out, nil
	}
}

func editRecord(edit tracker.VisualEdit) EditOutputRecord {
	element := edit.ElementTestID
	if element == "" {
		element = edit.ElementID
	}
	changes := make(map[string]string, len(edit.Changes))
	for field, change := range edit.Changes {
		changes[field] = fmt.Sprintf("%q -> %q", change.Before, change.After)
	}
	return EditOutputRecord{
		ID:          edit.ID,
		Timestamp:   edit.Timestamp,
		Element:     element,
		ChangeType:  edit.ChangeType,
		Changes:     changes,
		Description: edit.Description,
	}
}
