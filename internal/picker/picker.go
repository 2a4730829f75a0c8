package picker

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/tails/internal/ops"
)

// Options configures where the picker reads keys and draws.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// New returns a PickFunc that shows session's history in the terminal.
// Clips deleted in the picker are deleted from the session.
func New(session *ops.Session, opts Options) ops.PickFunc {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	return func(ctx context.Context) (string, bool, error) {
		remove := func(id string) []ops.ListItem {
			session.DeleteByID(ctx, id)
			return session.List().Items
		}
		m := NewModel(session.List().Items, remove)

		p := tea.NewProgram(
			m,
			tea.WithContext(ctx),
			tea.WithInput(opts.Input),
			tea.WithOutput(opts.Output),
		)
		final, err := p.Run()
		if err != nil {
			if ctx.Err() != nil {
				return "", false, nil
			}
			return "", false, fmt.Errorf("picker: %w", err)
		}

		id, ok := final.(Model).Chosen()
		return id, ok, nil
	}
}
