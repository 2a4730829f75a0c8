package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tails/internal/config"
	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/state"
)

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "", StatusLabel(0))
	require.Equal(t, "1 clip", StatusLabel(1))
	require.Equal(t, "12 clips", StatusLabel(12))
}

func TestList_MostRecentFirst(t *testing.T) {
	env := newTestEnv(t, nil)
	env.capture(t, "go", "first clip")
	env.capture(t, "go", "second one\nand more")

	out := env.session.List()
	require.Equal(t, 2, out.Count)
	require.Equal(t, 20, out.Capacity)
	require.Equal(t, "2 clips", out.Status)
	require.Equal(t, "second one...", out.Items[0].Label)
	require.Equal(t, "... 2 lines, from 'file.go'", out.Items[0].Detail)
	require.Equal(t, 1, out.Items[1].Index)
	require.Equal(t, "first clip", out.Items[1].Label)
}

func TestGet_ByIndex(t *testing.T) {
	env := newTestEnv(t, nil)
	env.capture(t, "go", "second one\nand more")

	out, err := env.session.Get(GetInput{Index: 0})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	require.Equal(t, "second one\nand more", out.Text)
	require.Equal(t, 2, out.LineCount)

	_, err = env.session.Get(GetInput{Index: 1})
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	goClip := env.capture(t, "go", "shared text")
	pyClip := env.capture(t, "python", "shared text")
	env.capture(t, "go", "third clip")

	out := env.session.DeleteByTimestamp(ctx, goClip.CreatedAt)
	require.True(t, out.Deleted)
	require.Equal(t, 2, out.Count)

	got, err := env.session.Get(GetInput{ID: pyClip.ID})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	require.Equal(t, "python", got.LanguageID)

	require.False(t, env.session.DeleteByTimestamp(ctx, goClip.CreatedAt).Deleted)
	require.False(t, env.session.DeleteByTimestamp(ctx, 0).Deleted)

	require.True(t, env.session.DeleteAt(ctx, 0).Deleted)
	require.False(t, env.session.DeleteAt(ctx, 5).Deleted)
	require.False(t, env.session.DeleteByID(ctx, "missing").Deleted)
	require.True(t, env.session.DeleteByID(ctx, pyClip.ID).Deleted)
	require.Equal(t, 0, env.session.Len())

	_, visible := env.status.Current()
	require.False(t, visible)
}

func TestClear(t *testing.T) {
	env := newTestEnv(t, nil)
	env.capture(t, "go", "first clip")
	env.capture(t, "go", "second clip")

	out := env.session.Clear(context.Background())
	require.Equal(t, 2, out.Cleared)
	require.Equal(t, 0, env.session.Len())

	st := env.session.Status()
	require.Equal(t, 0, st.Count)
	require.Equal(t, "", st.Label)
	require.Equal(t, "test", st.Scope)
}

func TestSession_PersistsHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	first := env.capture(t, "go", "first clip")
	second := env.capture(t, "go", "second clip")

	reopened := env.open(t, env.session.Config())
	list := reopened.List()
	require.Equal(t, 2, list.Count)
	require.Equal(t, second.ID, list.Items[0].ID)
	require.Equal(t, first.ID, list.Items[1].ID)

	scopes, err := env.backend.Scopes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"test"}, scopes)

	// New captures sort after restored ones
	third, err := reopened.Capture(context.Background(), "third clip", goDoc())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	require.Greater(t, third.CreatedAt, second.CreatedAt)
}

func TestSession_PersistDisabled(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		off := false
		c.PersistHistory = &off
	})
	env.capture(t, "go", "first clip")

	_, ok, err := env.backend.Load(context.Background(), "test", state.HistoryKey)
	require.NoError(t, err)
	require.False(t, ok)

	reopened := env.open(t, env.session.Config())
	require.Equal(t, 0, reopened.Len())
}

func TestSession_UnreadableHistoryIsDiscarded(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.backend.Save(ctx, "test", state.HistoryKey, []byte("{not json")))

	reopened := env.open(t, env.session.Config())
	require.Equal(t, 0, reopened.Len())
}

func TestSession_ReconfigureShrinksCapacity(t *testing.T) {
	env := newTestEnv(t, nil)
	env.capture(t, "go", "first clip")
	env.capture(t, "go", "second clip")
	newest := env.capture(t, "go", "third clip")

	cfg := *env.session.Config()
	cfg.Capacity = 1
	env.session.Reconfigure(context.Background(), &cfg)

	list := env.session.List()
	require.Equal(t, 1, list.Count)
	require.Equal(t, newest.ID, list.Items[0].ID)

	reopened := env.open(t, &cfg)
	require.Equal(t, 1, reopened.Len())
}

func TestSession_ReconfigureAppliesRules(t *testing.T) {
	env := newTestEnv(t, nil)

	cfg := *env.session.Config()
	cfg.MinSingleLineChars = config.Int(20)
	env.session.Reconfigure(context.Background(), &cfg)

	out, err := env.session.Capture(context.Background(), "short clip", goDoc())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	require.Equal(t, "too_short", out.Reason)
}

func TestSession_CapacityEvictsOldest(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Capacity = 2 })
	env.capture(t, "go", "first clip")
	second := env.capture(t, "go", "second clip")
	third := env.capture(t, "go", "third clip")

	list := env.session.List()
	require.Equal(t, 2, list.Count)
	require.Equal(t, third.ID, list.Items[0].ID)
	require.Equal(t, second.ID, list.Items[1].ID)
}
