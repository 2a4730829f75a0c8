package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	session *ops.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(session *ops.Session) *Handlers {
	return &Handlers{session: session}
}

// Request types for each tool

// GetRequest represents the arguments for get.
type GetRequest struct {
	ID    string `json:"id,omitempty"`
	Index int    `json:"index,omitempty"`
}

// CaptureRequest represents the arguments for capture.
type CaptureRequest struct {
	DocumentArgs
	Text string `json:"text"`
}

// PasteRequest represents the arguments for paste.
type PasteRequest struct {
	DocumentArgs
	ID    string `json:"id,omitempty"`
	Index int    `json:"index,omitempty"`
}

// RingPasteRequest represents the arguments for ring_paste.
type RingPasteRequest struct {
	DocumentArgs
	Line            int  `json:"line,omitempty"`
	Character       int  `json:"character,omitempty"`
	AnchorLine      *int `json:"anchor_line,omitempty"`
	AnchorCharacter *int `json:"anchor_character,omitempty"`
}

// CSVPasteRequest represents the arguments for csv_paste.
type CSVPasteRequest struct {
	Wrap string `json:"wrap,omitempty"`
}

// CompleteRequest represents the arguments for complete.
type CompleteRequest struct {
	DocumentArgs
}

// InlineRequest represents the arguments for inline.
type InlineRequest struct {
	DocumentArgs
	LineText   string `json:"line_text"`
	Character  *int   `json:"character,omitempty"`
	LineIndent string `json:"line_indent,omitempty"`
}

// DeleteRequest represents the arguments for delete.
type DeleteRequest struct {
	ID        string `json:"id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.List())
}

// HandleGet handles the get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.Get(ops.GetInput{ID: input.ID, Index: input.Index})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCapture handles the capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Text == "" {
		return errorResult(errors.NewInvalidRequest("text is required")), nil
	}

	result, err := h.session.Capture(ctx, input.Text, input.document(input.Text))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePaste handles the paste tool call.
func (h *Handlers) HandlePaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PasteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ed := host.NewStaticEditor(input.document(""))
	result, err := h.session.Paste(ctx, ed, ops.PasteInput{ID: input.ID, Index: input.Index})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRingPaste handles the ring_paste tool call.
func (h *Handlers) HandleRingPaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RingPasteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.hasLanguage() {
		return errorResult(errors.NewInvalidRequest("language_id or path is required")), nil
	}

	doc := input.document("")
	doc.Selection = cursor(input.Line, input.Character, input.AnchorLine, input.AnchorCharacter)
	result, err := h.session.RingPaste(ctx, host.NewStaticEditor(doc))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCSVPaste handles the csv_paste tool call.
func (h *Handlers) HandleCSVPaste(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CSVPasteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.PasteCSV(ctx, ops.CSVInput{Wrap: input.Wrap})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleComplete handles the complete tool call.
func (h *Handlers) HandleComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.hasLanguage() {
		return errorResult(errors.NewInvalidRequest("language_id or path is required")), nil
	}

	return successResult(h.session.Complete(input.document("")))
}

// HandleInline handles the inline tool call.
func (h *Handlers) HandleInline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InlineRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.hasLanguage() {
		return errorResult(errors.NewInvalidRequest("language_id or path is required")), nil
	}

	character := runeLen(input.LineText)
	if input.Character != nil {
		character = *input.Character
	}
	doc := input.document("")
	doc.LineIndent = input.LineIndent
	return successResult(h.session.Inline(ops.InlineInput{
		Document:  doc,
		Line:      input.LineText,
		Character: character,
	}))
}

// HandleDelete handles the delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	switch {
	case strings.TrimSpace(input.ID) != "":
		return successResult(h.session.DeleteByID(ctx, strings.TrimSpace(input.ID)))
	case input.CreatedAt != 0:
		return successResult(h.session.DeleteByTimestamp(ctx, input.CreatedAt))
	case input.Index != nil:
		return successResult(h.session.DeleteAt(ctx, *input.Index))
	default:
		return errorResult(errors.NewInvalidRequest("one of id, created_at or index is required")), nil
	}
}

// HandleClear handles the clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.Clear(ctx))
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.Status())
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.Export(ctx, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.session.Import(ctx, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error. Wrapping context
// added around a TailsError is kept in the message. Details of internal
// errors are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var tErr *errors.TailsError
	if stderrors.As(err, &tErr) {
		msg := tErr.Message
		if wrapped := err.Error(); wrapped != tErr.Error() {
			msg = strings.TrimSuffix(wrapped, tErr.Error()) + tErr.Message
		}
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": msg,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
