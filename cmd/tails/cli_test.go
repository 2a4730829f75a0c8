package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/ops"
	"github.com/hpungsan/tails/internal/state"
)

type cliEnv struct {
	*appEnv
	clip *host.MemoryClipboard
	cmd  *host.RecordingCommander
}

// setupTestEnv builds an appEnv over in-memory collaborators.
func setupTestEnv(t *testing.T) *cliEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PasteCommand = "paste"

	env := &cliEnv{
		appEnv: newAppEnv(t.TempDir(), t.TempDir(), cfg),
		clip:   host.NewMemoryClipboard(""),
		cmd:    &host.RecordingCommander{},
	}
	env.clipboard = env.clip
	env.commander = env.cmd
	env.status = &host.RecordingStatus{}
	env.backend = state.NewMemory()
	t.Cleanup(env.close)
	return env
}

// runCLI runs the app with args and returns what it wrote to stdout.
func runCLI(t *testing.T, env *cliEnv, stdin string, args ...string) (string, error) {
	t.Helper()

	if stdin != "" {
		oldStdin := os.Stdin
		stdinR, stdinW, err := os.Pipe()
		require.NoError(t, err)
		_, err = stdinW.WriteString(stdin)
		require.NoError(t, err)
		stdinW.Close()
		os.Stdin = stdinR
		defer func() {
			os.Stdin = oldStdin
			stdinR.Close()
		}()
	}

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.Bytes()
	}()

	runErr := newCLIApp(env.appEnv).Run(append([]string{"tails"}, args...))

	w.Close()
	out := <-done
	os.Stdout = oldStdout
	r.Close()
	return string(out), runErr
}

// mustRun is runCLI that fails the test on error and decodes the output.
func mustRun[T any](t *testing.T, env *cliEnv, stdin string, args ...string) T {
	t.Helper()
	out, err := runCLI(t, env, stdin, args...)
	if err != nil {
		t.Fatalf("tails %s error = %v", strings.Join(args, " "), err)
	}
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	return v
}

func TestCLICapture(t *testing.T) {
	env := setupTestEnv(t)

	out := mustRun[ops.CaptureOutput](t, env, "    fmt.Println(x)\n", "--lang=go", "capture")
	require.True(t, out.Added)
	require.NotEmpty(t, out.ID)
	require.Equal(t, 1, out.Count)

	got := mustRun[ops.GetOutput](t, env, "", "get", "0")
	require.Equal(t, []string{"fmt.Println(x)"}, got.Lines)
	require.Equal(t, "go", got.LanguageID)
}

func TestCLICapture_DetectsLanguageFromFile(t *testing.T) {
	env := setupTestEnv(t)

	mustRun[ops.CaptureOutput](t, env, "def handler(event):\n    return event\n", "--file=/src/app.py", "capture")

	got := mustRun[ops.GetOutput](t, env, "", "get", "0")
	require.Equal(t, "python", got.LanguageID)
	require.Equal(t, "app.py", got.SourceFile)
}

func TestCLICapture_RejectedClip(t *testing.T) {
	env := setupTestEnv(t)

	out := mustRun[ops.CaptureOutput](t, env, "ab", "--lang=go", "capture")
	require.False(t, out.Added)
	require.Equal(t, string(clip.RejectTooShort), out.Reason)
}

func TestCLIList(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "first clip", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "second clip", "--lang=go", "capture")

	out := mustRun[ops.ListOutput](t, env, "", "list")
	require.Equal(t, 2, out.Count)
	require.Equal(t, "second clip", out.Items[0].Label)
	require.Equal(t, "2 clips", out.Status)
}

func TestCLIPaste(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "a := 1\nb := 2\n", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "newest clip", "--lang=go", "capture")

	t.Run("by index", func(t *testing.T) {
		out := mustRun[ops.PasteOutput](t, env, "", "--eol=crlf", "paste", "1")
		require.True(t, out.Pasted)
		require.Equal(t, "a := 1\r\nb := 2\r\n", env.clip.Text())
	})

	t.Run("by id", func(t *testing.T) {
		list := mustRun[ops.ListOutput](t, env, "", "list")
		out := mustRun[ops.PasteOutput](t, env, "", "paste", "--id="+list.Items[0].ID)
		require.Equal(t, 0, out.Index)
		require.Equal(t, "newest clip", env.clip.Text())
	})

	t.Run("invalid index", func(t *testing.T) {
		_, err := runCLI(t, env, "", "paste", "first")
		require.Error(t, err)
		require.Contains(t, err.Error(), "[INVALID_REQUEST]")
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := runCLI(t, env, "", "paste", "9")
		require.Error(t, err)
		require.Contains(t, err.Error(), "[NOT_FOUND]")
	})

	require.Equal(t, []string{"paste", "paste"}, env.cmd.Calls())
}

func TestCLIPaste_NoClips(t *testing.T) {
	env := setupTestEnv(t)

	_, err := runCLI(t, env, "", "paste")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[NO_CLIPS]")
}

func TestCLIRing(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "alpha := 1", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "beta := 2", "--lang=go", "capture")

	out := mustRun[ops.RingOutput](t, env, "", "--lang=go", "ring", "--line=3", "--col=4")
	require.True(t, out.Pasted)
	require.NotNil(t, out.Selection)
	require.Equal(t, 3, out.Selection.Anchor.Line)
	require.Equal(t, 4, out.Selection.Anchor.Character)
	require.Equal(t, 4+utf8.RuneCountInString(out.Text), out.Selection.Active.Character)

	// Another language has nothing to cycle through
	other := mustRun[ops.RingOutput](t, env, "", "--lang=python", "ring")
	require.False(t, other.Pasted)
}

func TestCLIRing_SameFileSameLanguage(t *testing.T) {
	env := setupTestEnv(t)
	cppText := "template <typename T> class Widget : public std::vector<T> {};"

	captured := mustRun[ops.CaptureOutput](t, env, cppText, "--file=/src/widget.h", "capture")
	require.True(t, captured.Added)

	// Ring and complete see the same document without its content
	out := mustRun[ops.RingOutput](t, env, "", "--file=/src/widget.h", "ring")
	require.True(t, out.Pasted)
	require.Equal(t, captured.ID, out.ID)

	complete := mustRun[ops.CompleteOutput](t, env, "", "--file=/src/widget.h", "complete")
	require.NotEmpty(t, complete.Items)
}

func TestCLICSV(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "alpha line", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "beta line", "--lang=go", "capture")

	out := mustRun[ops.PasteOutput](t, env, "", "csv", "--wrap='")
	require.True(t, out.Pasted)
	require.Equal(t, "'beta line', 'alpha line'", env.clip.Text())
}

func TestCLICompleteAndInline(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "return errors.New(msg)", "--lang=go", "capture")

	complete := mustRun[ops.CompleteOutput](t, env, "", "--lang=go", "complete")
	labels := make([]string, 0, len(complete.Items))
	for _, it := range complete.Items {
		labels = append(labels, it.Label)
	}
	require.Contains(t, labels, "errors")

	inline := mustRun[ops.InlineOutput](t, env, "", "--lang=go", "inline", "--line=\tret")
	require.Len(t, inline.Items, 1)
	require.Equal(t, "urn errors.New(msg)", inline.Items[0].Text)

	none := mustRun[ops.InlineOutput](t, env, "", "--lang=python", "inline", "--line=ret")
	require.Empty(t, none.Items)
}

func TestCLIDelete(t *testing.T) {
	env := setupTestEnv(t)
	first := mustRun[ops.CaptureOutput](t, env, "first clip", "--lang=go", "capture")
	second := mustRun[ops.CaptureOutput](t, env, "second clip", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "third clip", "--lang=go", "capture")

	out := mustRun[ops.DeleteOutput](t, env, "", "delete", "--id="+second.ID)
	require.True(t, out.Deleted)
	require.Equal(t, 2, out.Count)

	out = mustRun[ops.DeleteOutput](t, env, "", "delete", "--timestamp="+jsonNumber(first.CreatedAt))
	require.True(t, out.Deleted)
	require.Equal(t, 1, out.Count)

	out = mustRun[ops.DeleteOutput](t, env, "", "delete", "0")
	require.True(t, out.Deleted)
	require.Equal(t, 0, out.Count)

	out = mustRun[ops.DeleteOutput](t, env, "", "delete", "--id=missing")
	require.False(t, out.Deleted)

	_, err := runCLI(t, env, "", "delete")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[INVALID_REQUEST]")
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestCLIClearAndStatus(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "only clip", "--lang=go", "capture")

	status := mustRun[ops.StatusOutput](t, env, "", "status")
	require.Equal(t, "1 clip", status.Label)

	cleared := mustRun[ops.ClearOutput](t, env, "", "clear")
	require.Equal(t, 1, cleared.Cleared)

	status = mustRun[ops.StatusOutput](t, env, "", "status")
	require.Equal(t, 0, status.Count)
	require.Equal(t, "", status.Label)
}

func TestCLIExportImport(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "exported clip", "--lang=go", "capture")
	mustRun[ops.CaptureOutput](t, env, "another clip", "--lang=python", "capture")

	exported := mustRun[ops.ExportOutput](t, env, "", "export")
	require.Equal(t, 2, exported.Count)
	require.True(t, strings.HasPrefix(exported.Path, filepath.Join(env.baseDir, "exports")))

	mustRun[ops.ClearOutput](t, env, "", "clear")

	imported := mustRun[ops.ImportOutput](t, env, "", "import", "--path="+exported.Path)
	require.Equal(t, 2, imported.Imported)

	list := mustRun[ops.ListOutput](t, env, "", "list")
	require.Equal(t, "another clip", list.Items[0].Label)
	require.Equal(t, "exported clip", list.Items[1].Label)
}

func TestCLIImport_MissingPath(t *testing.T) {
	env := setupTestEnv(t)

	_, err := runCLI(t, env, "", "import")
	require.Error(t, err)
}

func TestCLIScopes(t *testing.T) {
	env := setupTestEnv(t)
	mustRun[ops.CaptureOutput](t, env, "scoped clip", "--workspace=proj", "--lang=go", "capture")

	out := mustRun[map[string]any](t, env, "", "scopes")
	require.Equal(t, []any{"proj"}, out["scopes"])
}

func TestCLIWorkspaceDefaultsToRepoName(t *testing.T) {
	env := setupTestEnv(t)
	repo := filepath.Join(t.TempDir(), "myrepo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	sub := filepath.Join(repo, "pkg", "util")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	env.cwd = sub

	status := mustRun[ops.StatusOutput](t, env, "", "status")
	require.Equal(t, "myrepo", status.Scope)
}

func TestRepoScope(t *testing.T) {
	root := t.TempDir()
	global := filepath.Join(root, ".tails")
	require.NoError(t, os.MkdirAll(global, 0o755))

	withTails := filepath.Join(root, "work", "tooling")
	require.NoError(t, os.MkdirAll(filepath.Join(withTails, ".tails"), 0o755))
	plain := filepath.Join(root, "scratch", "notes")
	require.NoError(t, os.MkdirAll(plain, 0o755))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"repo config dir", filepath.Join(withTails, "src"), "tooling"},
		{"global dir is not a repo", plain, ops.DefaultScope},
		{"empty start", "", ops.DefaultScope},
	}
	require.NoError(t, os.MkdirAll(filepath.Join(withTails, "src"), 0o755))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repoScope(tt.start, global); got != tt.want {
				t.Errorf("repoScope(%q) = %q, want %q", tt.start, got, tt.want)
			}
		})
	}
}

func TestOutputError(t *testing.T) {
	err := outputError(ops.ValidatePath("../x.jsonl", ops.PathCheckRead, config.DefaultConfig(), ""))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "[INVALID_REQUEST] "), err.Error())

	err = outputError(io.ErrUnexpectedEOF)
	require.Equal(t, "unexpected EOF", err.Error())
}

func TestDocumentFlags(t *testing.T) {
	env := setupTestEnv(t)
	env.clip.Set("copied text")

	out := mustRun[ops.CaptureOutput](t, env, "", "--lang=rust", "--file=/src/lib.rs", "copy")
	require.True(t, out.Added)

	got := mustRun[ops.GetOutput](t, env, "", "get", "--id="+out.ID)
	require.Equal(t, "rust", got.LanguageID)
	require.Equal(t, "lib.rs", got.SourceFile)
}

func TestSignalContext_CancelsWithParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := signalContext(parent)
	defer stop()

	cancel()
	<-ctx.Done()
}
