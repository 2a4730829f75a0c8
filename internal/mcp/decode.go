package mcp

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/host"
)

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	if args == nil {
		return result, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// DocumentArgs describes the caller's active document. Embedded in every
// request that renders or captures for a language.
type DocumentArgs struct {
	LanguageID string `json:"language_id,omitempty"`
	Path       string `json:"path,omitempty"`
	EOL        string `json:"eol,omitempty"`
}

// document builds a host document, detecting the language from the path
// and content when none is given.
func (d DocumentArgs) document(content string) host.Document {
	lang := d.LanguageID
	if lang == "" {
		lang = host.DetectLanguage(d.Path, []byte(content))
	}
	return host.Document{
		LanguageID: lang,
		EOL:        host.ParseEOL(d.EOL),
		Path:       d.Path,
	}
}

func (d DocumentArgs) hasLanguage() bool {
	return d.LanguageID != "" || d.Path != ""
}

// cursor builds a selection from active and optional anchor coordinates;
// without an anchor the selection is empty.
func cursor(line, character int, anchorLine, anchorCharacter *int) clip.Selection {
	active := clip.Position{Line: line, Character: character}
	anchor := active
	if anchorLine != nil {
		anchor.Line = *anchorLine
	}
	if anchorCharacter != nil {
		anchor.Character = *anchorCharacter
	}
	return clip.Selection{Anchor: anchor, Active: active}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
