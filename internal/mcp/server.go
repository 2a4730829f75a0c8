package mcp

import (
	"context"
	"os"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/log"
	"github.com/hpungsan/tails/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"capture": {
		def:     captureToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCapture },
	},
	"paste": {
		def:     pasteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePaste },
	},
	"ring_paste": {
		def:     ringPasteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRingPaste },
	},
	"csv_paste": {
		def:     csvPasteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCSVPaste },
	},
	"complete": {
		def:     completeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleComplete },
	},
	"inline": {
		def:     inlineToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInline },
	},
	"delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the clip tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(session *ops.Session, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tails",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(session)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown disabled_tools entries: %v", unknown)
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves MCP over stdio until ctx is cancelled or stdin closes.
func Run(ctx context.Context, session *ops.Session, cfg *config.Config, version string) error {
	s := NewServer(session, cfg, version)
	log.With(log.Fields{"scope": session.Scope(), "clips": session.Len()}).Info("mcp server starting")
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}
