package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Document arguments shared by tools that work against an editor document.
func withDocument() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("language_id",
			mcp.Description("Editor language identifier (e.g. go, python). Detected from path when omitted."),
		),
		mcp.WithString("path",
			mcp.Description("Path of the active document"),
		),
		mcp.WithString("eol",
			mcp.Description("Line separator of the active document"),
			mcp.Enum("lf", "crlf"),
		),
	}
}

func withDoc(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, withDocument()...)
}

var listToolDef = mcp.NewTool("list",
	mcp.WithDescription("List clipboard history, most recent first. Returns index, id, label and line count per clip."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool("get",
	mcp.WithDescription("Get one clip with its lines and keywords. Address by id or index."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Description("Clip ID (wins over index)")),
	mcp.WithNumber("index", mcp.Description("Zero-based history index, 0 = most recent")),
)

var captureToolDef = mcp.NewTool("capture", withDoc(
	mcp.WithDescription("Add text to the clipboard history as if it had been copied in the given document. "+
		"Blank, ignored, too long, too short and duplicate clips are reported with a reason."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Copied text")),
)...)

var pasteToolDef = mcp.NewTool("paste", withDoc(
	mcp.WithDescription("Render a clip for the document and paste it through the clipboard."),
	mcp.WithString("id", mcp.Description("Clip ID (wins over index)")),
	mcp.WithNumber("index", mcp.Description("Zero-based history index, default 0")),
)...)

var ringPasteToolDef = mcp.NewTool("ring_paste", withDoc(
	mcp.WithDescription("Paste the next clip of the document's language after the last ring paste. "+
		"Returns the selection covering the pasted text."),
	mcp.WithNumber("line", mcp.Description("Cursor line (zero-based)")),
	mcp.WithNumber("character", mcp.Description("Cursor character (zero-based)")),
	mcp.WithNumber("anchor_line", mcp.Description("Selection anchor line; defaults to the cursor")),
	mcp.WithNumber("anchor_character", mcp.Description("Selection anchor character; defaults to the cursor")),
)...)

var csvPasteToolDef = mcp.NewTool("csv_paste",
	mcp.WithDescription("Paste every line of the history as one comma-separated string."),
	mcp.WithString("wrap", mcp.Description("Wrap each line in this string, e.g. a quote; its first character is escaped inside lines")),
)

var completeToolDef = mcp.NewTool("complete", withDoc(
	mcp.WithDescription("Keyword completions from clips of the document's language. Each inserts the whole clip."),
	mcp.WithReadOnlyHintAnnotation(true),
)...)

var inlineToolDef = mcp.NewTool("inline", withDoc(
	mcp.WithDescription("Inline suggestions completing the typed line from clips whose first line starts with it."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("line_text", mcp.Required(), mcp.Description("Full text of the cursor's line")),
	mcp.WithNumber("character", mcp.Description("Cursor character; defaults to the end of the line")),
	mcp.WithString("line_indent", mcp.Description("Indent for continuation lines; defaults to the line's leading whitespace")),
)...)

var deleteToolDef = mcp.NewTool("delete",
	mcp.WithDescription("Delete one clip by id, created_at timestamp or index."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Description("Clip ID")),
	mcp.WithNumber("created_at", mcp.Description("Capture timestamp in Unix milliseconds")),
	mcp.WithNumber("index", mcp.Description("Zero-based history index")),
)

var clearToolDef = mcp.NewTool("clear",
	mcp.WithDescription("Remove every clip from the history."),
	mcp.WithDestructiveHintAnnotation(true),
)

var statusToolDef = mcp.NewTool("status",
	mcp.WithDescription("Clip count and the status label."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("export",
	mcp.WithDescription("Export the history to a JSONL file. Default location is ~/.tails/exports."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path")),
)

var importToolDef = mcp.NewTool("import",
	mcp.WithDescription("Import clips from a JSONL export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("mode",
		mcp.Description("error: abort on any bad line (default); merge: skip bad lines and merge; replace: skip bad lines and replace the history"),
		mcp.Enum("error", "merge", "replace"),
	),
)
