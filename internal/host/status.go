package host

import (
	"sync"

	"github.com/hpungsan/tails/internal/log"
)

// StatusDisplay shows the clip count label.
type StatusDisplay interface {
	Show(text string)
	Hide()
}

// LogStatus reports label changes through the logger.
type LogStatus struct {
	mu   sync.Mutex
	last string
}

func (s *LogStatus) Show(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text != s.last {
		log.Debug("status: %s", text)
		s.last = text
	}
}

func (s *LogStatus) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != "" {
		log.Debug("status: hidden")
		s.last = ""
	}
}

// RecordingStatus keeps the current label and visibility for tests.
type RecordingStatus struct {
	mu      sync.Mutex
	text    string
	visible bool
	updates int
}

func (s *RecordingStatus) Show(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.visible = true
	s.updates++
}

func (s *RecordingStatus) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
	s.updates++
}

// Current returns the label and whether it is shown.
func (s *RecordingStatus) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.visible
}

// Updates counts Show and Hide calls.
func (s *RecordingStatus) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}
