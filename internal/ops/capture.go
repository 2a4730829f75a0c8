package ops

import (
	"context"
	"time"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/errors"
	"github.com/hpungsan/tails/internal/host"
	"github.com/hpungsan/tails/internal/log"
)

// Capture outcomes besides the normalizer's rejections.
const (
	ReasonDuplicate = "duplicate"
	ReasonDebounced = "debounced"
	ReasonThrottled = "throttled"
)

// CaptureOutput contains the result of a capture.
type CaptureOutput struct {
	Added     bool   `json:"added"`
	ID        string `json:"id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	Reason    string `json:"reason,omitempty"`
	// Retracted is the timestamp of a clip removed by the cut throttle
	Retracted int64 `json:"retracted,omitempty"`
	Count     int   `json:"count"`
}

// Capture normalizes text and adds it to the history.
func (s *Session) Capture(ctx context.Context, text string, doc host.Document) (*CaptureOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.capture(ctx, text, doc)
	s.saveState(ctx)
	return out, nil
}

// Copy runs the copy command, then captures the clipboard.
func (s *Session) Copy(ctx context.Context, ed host.Editor) (*CaptureOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := ed.Document()
	if !ok {
		return nil, errors.NewNoEditor("document")
	}
	if err := s.runCommand(ctx, s.cfg.CopyCommand); err != nil {
		return nil, err
	}
	text, err := s.clipboard.ReadText(ctx)
	if err != nil {
		return nil, errors.NewClipboardUnavailable(err)
	}

	out := s.capture(ctx, text, doc)
	s.saveState(ctx)
	return out, nil
}

// Cut runs the cut command and captures the clipboard. A cut that follows
// the previous one within CutThrottleMs is not captured; instead the clip
// added last is retracted if it is itself that recent.
func (s *Session) Cut(ctx context.Context, ed host.Editor) (*CaptureOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := ed.Document()
	if !ok {
		return nil, errors.NewNoEditor("document")
	}

	now := s.nowMs()
	sinceCut := now - s.lastCutAt
	if err := s.runCommand(ctx, s.cfg.CutCommand); err != nil {
		return nil, err
	}
	s.lastCutAt = now

	throttle := s.cfg.CutThrottle().Milliseconds()
	if sinceCut >= throttle {
		text, err := s.clipboard.ReadText(ctx)
		if err != nil {
			s.saveState(ctx)
			return nil, errors.NewClipboardUnavailable(err)
		}
		out := s.capture(ctx, text, doc)
		s.saveState(ctx)
		return out, nil
	}

	out := &CaptureOutput{Reason: ReasonThrottled}
	if s.lastAddedAt > 0 && s.nowMs()-s.lastAddedAt < throttle {
		if s.store.DeleteByTimestamp(s.lastAddedAt) {
			out.Retracted = s.lastAddedAt
			s.changed(ctx)
		}
		s.lastAddedAt = 0
	}
	out.Count = s.store.Len()
	s.saveState(ctx)
	return out, nil
}

// capture runs the debounce check, the normalizer and the insert.
// The caller holds the lock and saves session state.
func (s *Session) capture(ctx context.Context, text string, doc host.Document) *CaptureOutput {
	now := s.nowMs()
	sum := checksum(text)
	window := s.cfg.Debounce().Milliseconds()
	debounced := window > 0 && sum == s.lastCaptureSum && now-s.lastCaptureAt < window
	s.lastCaptureSum = sum
	s.lastCaptureAt = now
	if debounced {
		return &CaptureOutput{Reason: ReasonDebounced, Count: s.store.Len()}
	}

	lines, reject := clip.Clean(text, doc.EOL, s.rules)
	if reject != "" {
		log.Debug("clip rejected: %s", reject)
		return &CaptureOutput{Reason: string(reject), Count: s.store.Len()}
	}

	keywords := clip.Keywords(text, s.rules)
	e, ok := s.store.Insert(doc.LanguageID, lines, doc.FileName(), keywords)
	if !ok {
		return &CaptureOutput{Reason: ReasonDuplicate, Count: s.store.Len()}
	}

	s.lastAddedAt = e.CreatedAt
	s.changed(ctx)
	log.With(log.Fields{"id": e.ID, "lang": e.LanguageID, "lines": len(e.Lines)}).Debug("clip added")
	return &CaptureOutput{
		Added:     true,
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Count:     s.store.Len(),
	}
}

// Watch polls the clipboard and captures every change until ctx is done.
// Content present when watching starts is not captured. onCapture, when
// set, receives each result.
func (s *Session) Watch(ctx context.Context, doc host.Document, onCapture func(*CaptureOutput)) error {
	interval := time.Duration(s.Config().WatchIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}

	last, err := s.clipboard.ReadText(ctx)
	if err != nil {
		log.Warn("clipboard read failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			text, err := s.clipboard.ReadText(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Warn("clipboard read failed: %v", err)
				continue
			}
			if text == last {
				continue
			}
			last = text

			out, err := s.Capture(ctx, text, doc)
			if err != nil {
				return err
			}
			if onCapture != nil {
				onCapture(out)
			}
		}
	}
}
