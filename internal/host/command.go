package host

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Commander runs a host command by name and waits for it to finish.
type Commander interface {
	Run(ctx context.Context, name string) error
}

// ExecCommander runs command lines through the system shell. An empty
// command line is a no-op.
type ExecCommander struct{}

func (ExecCommander) Run(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", name)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", name)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// RecordingCommander records every command it is asked to run.
// Err, when set, fails every call. OnRun is called before returning.
type RecordingCommander struct {
	mu    sync.Mutex
	calls []string
	Err   error
	OnRun func(name string)
}

func (r *RecordingCommander) Run(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.calls = append(r.calls, name)
	err := r.Err
	hook := r.OnRun
	r.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		hook(name)
	}
	return nil
}

// Calls returns the recorded command names in order.
func (r *RecordingCommander) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
