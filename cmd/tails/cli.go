package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/log"
	"github.com/hpungsan/tails/internal/mcp"
	"github.com/hpungsan/tails/internal/ops"
	"github.com/hpungsan/tails/internal/picker"
	"github.com/hpungsan/tails/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "tails",
		Usage:   "Clipboard history with a paste ring",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Usage: "Persistence scope (default: repository name)"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Language ID of the active document"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Path of the active document"},
			&cli.StringFlag{Name: "eol", Usage: "Line separator of the active document: lf|crlf"},
			&cli.StringFlag{Name: "indent", Usage: "Indentation of the cursor line"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log debug output to stderr"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel("debug")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			if isTerminal() {
				if c.NArg() > 0 {
					return cli.Exit(fmt.Sprintf("unknown command %q\nRun 'tails --help' for usage.", c.Args().First()), 1)
				}
				return cli.ShowAppHelp(c)
			}
			// Piped stdin without a command → MCP server
			return runMCP(c, env)
		},
		Commands: []*cli.Command{
			copyCmd(env),
			cutCmd(env),
			captureCmd(env),
			listCmd(env),
			getCmd(env),
			pasteCmd(env),
			ringCmd(env),
			smartCmd(env),
			csvCmd(env),
			completeCmd(env),
			inlineCmd(env),
			deleteCmd(env),
			clearCmd(env),
			statusCmd(env),
			exportCmd(env),
			importCmd(env),
			scopesCmd(env),
			watchCmd(env),
			pickCmd(env),
			uiCmd(env),
			mcpCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// session opens the session for the --workspace scope.
func session(c *cli.Context, env *appEnv) (*ops.Session, error) {
	s, err := env.open(c.Context, c.String("workspace"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return s, nil
}

// copyCmd creates the copy command.
func copyCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Run copy_command, then capture the clipboard",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Copy(c.Context, host.NewStaticEditor(document(c, "")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// cutCmd creates the cut command.
func cutCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "cut",
		Usage: "Run cut_command, then capture the clipboard (repeated cuts are throttled)",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Cut(c.Context, host.NewStaticEditor(document(c, "")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// captureCmd creates the capture command.
func captureCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Add a clip (reads text from stdin)",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("text must be piped via stdin"))
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("text is required"))
			}

			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Capture(c.Context, text, document(c, text))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List clips, most recent first",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(s.List())
		},
	}
}

// getCmd creates the get command.
func getCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one clip by index or ID",
		ArgsUsage: "[index]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Clip ID"},
		},
		Action: func(c *cli.Context) error {
			index, err := indexArg(c)
			if err != nil {
				return outputError(err)
			}
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Get(ops.GetInput{Index: index, ID: c.String("id")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pasteCmd creates the paste command.
func pasteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "paste",
		Usage:     "Paste one clip by index or ID",
		ArgsUsage: "[index]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Clip ID"},
		},
		Action: func(c *cli.Context) error {
			index, err := indexArg(c)
			if err != nil {
				return outputError(err)
			}
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			ed := host.NewStaticEditor(document(c, ""))
			output, err := s.Paste(c.Context, ed, ops.PasteInput{Index: index, ID: c.String("id")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// selectionFlags locate the cursor for ring and smart paste.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "line", Usage: "Cursor line (zero-based)"},
		&cli.IntFlag{Name: "col", Usage: "Cursor character (zero-based)"},
		&cli.IntFlag{Name: "anchor-line", Value: -1, Usage: "Selection anchor line (default: cursor)"},
		&cli.IntFlag{Name: "anchor-col", Value: -1, Usage: "Selection anchor character (default: cursor)"},
	}
}

// selectionEditor builds an editor whose selection comes from selectionFlags.
func selectionEditor(c *cli.Context) *host.StaticEditor {
	doc := document(c, "")
	active := clip.Position{Line: c.Int("line"), Character: c.Int("col")}
	anchor := active
	if c.Int("anchor-line") >= 0 && c.Int("anchor-col") >= 0 {
		anchor = clip.Position{Line: c.Int("anchor-line"), Character: c.Int("anchor-col")}
	}
	doc.Selection = clip.Selection{Anchor: anchor, Active: active}
	return host.NewStaticEditor(doc)
}

// ringCmd creates the ring command.
func ringCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "ring",
		Usage: "Paste the next clip of the document's language and select it",
		Flags: selectionFlags(),
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.RingPaste(c.Context, selectionEditor(c))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// smartCmd creates the smart command.
func smartCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "smart",
		Usage: "Pick a clip when nothing is selected, ring paste otherwise",
		Flags: selectionFlags(),
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			var pick ops.PickFunc
			if isTerminal() {
				pick = picker.New(s, picker.Options{})
			}
			output, err := s.SmartPaste(c.Context, selectionEditor(c), pick)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// csvCmd creates the csv command.
func csvCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "csv",
		Usage: "Paste every clip line as one comma-separated string",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "wrap", Usage: "Quote each value with this string (e.g. '\"')"},
		},
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.PasteCSV(c.Context, ops.CSVInput{Wrap: c.String("wrap")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// completeCmd creates the complete command.
func completeCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "List keyword completions for the document's language",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(s.Complete(document(c, "")))
		},
	}
}

// inlineCmd creates the inline command.
func inlineCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "inline",
		Usage: "Suggest the rest of a clip for the cursor line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "line", Required: true, Usage: "Full text of the cursor line"},
			&cli.IntFlag{Name: "col", Value: -1, Usage: "Cursor character (default: end of line)"},
		},
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			line := c.String("line")
			col := c.Int("col")
			if col < 0 {
				col = utf8.RuneCountInString(line)
			}
			return outputJSON(s.Inline(ops.InlineInput{Document: document(c, ""), Line: line, Character: col}))
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete one clip by index, ID or capture timestamp",
		ArgsUsage: "[index]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Clip ID"},
			&cli.Int64Flag{Name: "timestamp", Usage: "Capture time in Unix milliseconds"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 && !c.IsSet("id") && !c.IsSet("timestamp") {
				return outputError(errors.NewInvalidRequest("one of index, --id or --timestamp is required"))
			}
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}

			switch {
			case c.IsSet("id"):
				return outputJSON(s.DeleteByID(c.Context, c.String("id")))
			case c.IsSet("timestamp"):
				return outputJSON(s.DeleteByTimestamp(c.Context, c.Int64("timestamp")))
			}
			index, err := indexArg(c)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(s.DeleteAt(c.Context, index))
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every clip",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(s.Clear(c.Context))
		},
	}
}

// statusCmd creates the status command.
func statusCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the clip count",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(s.Status())
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the history to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.tails/exports/<scope>-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Export(c.Context, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import clips from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Input file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Import mode: error|merge|replace"},
		},
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			output, err := s.Import(c.Context, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// scopesCmd creates the scopes command.
func scopesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "scopes",
		Usage: "List the scopes with stored history",
		Action: func(c *cli.Context) error {
			if _, err := session(c, env); err != nil {
				return outputError(err)
			}
			scopes, err := env.backend.Scopes(c.Context)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if scopes == nil {
				scopes = []string{}
			}
			return outputJSON(map[string]any{"scopes": scopes, "count": len(scopes)})
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Capture every clipboard change until interrupted",
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			ctx, stop := signalContext(c.Context)
			defer stop()

			doc := document(c, "")
			err = env.serve(ctx, s, func(ctx context.Context) error {
				return s.Watch(ctx, doc, func(out *ops.CaptureOutput) {
					if err := outputJSON(out); err != nil {
						log.Warn("write capture: %v", err)
					}
				})
			})
			if err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// pickCmd creates the pick command.
func pickCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "pick",
		Usage: "Choose a clip interactively and print it",
		Action: func(c *cli.Context) error {
			if !isTerminal() {
				return outputError(errors.NewInvalidRequest("pick needs an interactive terminal"))
			}
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			if s.Len() == 0 {
				return outputError(errors.NewNoClips())
			}
			id, ok, err := picker.New(s, picker.Options{})(c.Context)
			if err != nil {
				return outputError(err)
			}
			if !ok {
				return outputJSON(map[string]any{"picked": false})
			}
			output, err := s.Get(ops.GetInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the clip history web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8384, Usage: "Port to listen on"},
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
		},
		Action: func(c *cli.Context) error {
			s, err := session(c, env)
			if err != nil {
				return outputError(err)
			}
			srv, err := web.NewServer(s, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			ctx, stop := signalContext(c.Context)
			defer stop()

			if err := env.serve(ctx, s, func(ctx context.Context) error { return web.Run(ctx, srv) }); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the clip tools over MCP stdio",
		Action: func(c *cli.Context) error {
			return runMCP(c, env)
		},
	}
}

func runMCP(c *cli.Context, env *appEnv) error {
	s, err := session(c, env)
	if err != nil {
		return outputError(err)
	}
	ctx, stop := signalContext(c.Context)
	defer stop()

	cfg := s.Config()
	err = env.serve(ctx, s, func(ctx context.Context) error {
		return mcp.Run(ctx, s, cfg, Version)
	})
	if err != nil {
		return outputError(err)
	}
	return nil
}

// Helper functions

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// document describes the active document from the global flags. content,
// when known, helps detect the language and line separator.
func document(c *cli.Context, content string) host.Document {
	path := c.String("file")
	lang := c.String("lang")
	if lang == "" {
		lang = host.DetectLanguage(path, []byte(content))
	}
	eol := host.ParseEOL(c.String("eol"))
	if eol == "" {
		eol = host.DetectEOL(content)
	}
	return host.Document{
		LanguageID: lang,
		EOL:        eol,
		Path:       path,
		LineIndent: c.String("indent"),
	}
}

// indexArg parses the optional positional index; 0 when absent.
func indexArg(c *cli.Context) (int, error) {
	if c.NArg() == 0 {
		return 0, nil
	}
	index, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid index %q", c.Args().First()))
	}
	return index, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var tErr *errors.TailsError
	if stderrors.As(err, &tErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin. Leading indentation is kept.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
