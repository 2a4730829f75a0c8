package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Capacity is the maximum number of clips kept in history (max_history_entries).
	Capacity int `json:"max_history_entries"`

	// PersistHistory saves history to the state backend after every change.
	// Pointer so a repo config can turn off a globally enabled flag.
	PersistHistory *bool `json:"persist_history,omitempty"`

	// StateBackend selects persistence storage: "sqlite" (default), "bolt", or "memory".
	StateBackend string `json:"state_backend,omitempty"`

	// IgnoredRegexes rejects a clip whose raw text matches any pattern (multiline search).
	IgnoredRegexes []string `json:"ignored_regexes,omitempty"`

	// The integer limits below are pointers because 0 is a meaningful value
	// that a repo config must be able to set over a non-zero default.

	// ClipLineLimit rejects clips with more lines after normalization. 0 means unlimited.
	ClipLineLimit *int `json:"clip_line_limit,omitempty"`

	// MinSingleLineChars rejects single-line clips shorter than this many characters.
	// 0 turns the filter off.
	MinSingleLineChars *int `json:"min_single_line_chars,omitempty"`

	// RingLineLimit skips clips with more lines during ring paste. 0 means unlimited.
	RingLineLimit *int `json:"ring_line_limit,omitempty"`

	// IgnoredWords are never offered as autocomplete keywords.
	IgnoredWords []string `json:"ignored_words,omitempty"`

	// KeywordIgnoredRegexes drops matching tokens from the keyword index.
	KeywordIgnoredRegexes []string `json:"keyword_ignored_regexes,omitempty"`

	// AutocompleteEnabled turns keyword completion on or off.
	AutocompleteEnabled *bool `json:"autocomplete_enabled,omitempty"`

	// InlineEnabled turns inline ghost-text suggestions on or off.
	InlineEnabled *bool `json:"inline_enabled,omitempty"`

	// InlineMaxLineCount skips longer clips for inline suggestions. 0 means unlimited.
	InlineMaxLineCount *int `json:"inline_max_line_count,omitempty"`

	// CutThrottleMs is the window in which a repeated cut retracts the previous capture.
	// 0 disables the throttle.
	CutThrottleMs *int `json:"cut_throttle_ms,omitempty"`

	// DebounceMs suppresses re-capturing identical text within the window. 0 disables.
	DebounceMs *int `json:"debounce_ms,omitempty"`

	// WatchIntervalMs is the clipboard polling interval for watch mode.
	WatchIntervalMs int `json:"watch_interval_ms,omitempty"`

	// CopyCommand, CutCommand and PasteCommand are host command lines run around
	// clipboard operations (e.g. "xdotool key ctrl+v"). Empty means no-op.
	CopyCommand  string `json:"copy_command,omitempty"`
	CutCommand   string `json:"cut_command,omitempty"`
	PasteCommand string `json:"paste_command,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.tails/exports require either being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity:            20,
		PersistHistory:      boolPtr(true),
		StateBackend:        "sqlite",
		MinSingleLineChars:  Int(4),
		RingLineLimit:       Int(1),
		AutocompleteEnabled: boolPtr(true),
		InlineEnabled:       boolPtr(true),
		CutThrottleMs:       Int(500),
		WatchIntervalMs:     1000,
		LogLevel:            "info",
	}
}

// Persist reports whether history persistence is enabled.
func (c *Config) Persist() bool {
	return c.PersistHistory == nil || *c.PersistHistory
}

// Autocomplete reports whether keyword completion is enabled.
func (c *Config) Autocomplete() bool {
	return c.AutocompleteEnabled == nil || *c.AutocompleteEnabled
}

// Inline reports whether inline suggestions are enabled.
func (c *Config) Inline() bool {
	return c.InlineEnabled == nil || *c.InlineEnabled
}

// ClipLines returns the clip line limit; 0 means unlimited.
func (c *Config) ClipLines() int {
	return intValue(c.ClipLineLimit)
}

// MinChars returns the minimum length of a single-line clip; 0 means no minimum.
func (c *Config) MinChars() int {
	return intValue(c.MinSingleLineChars)
}

// RingLines returns the ring paste line limit; 0 means unlimited.
func (c *Config) RingLines() int {
	return intValue(c.RingLineLimit)
}

// InlineLines returns the inline suggestion line limit; 0 means unlimited.
func (c *Config) InlineLines() int {
	return intValue(c.InlineMaxLineCount)
}

// CutThrottle returns the repeated-cut window.
func (c *Config) CutThrottle() time.Duration {
	return time.Duration(intValue(c.CutThrottleMs)) * time.Millisecond
}

// Debounce returns the capture debounce window; 0 disables it.
func (c *Config) Debounce() time.Duration {
	return time.Duration(intValue(c.DebounceMs)) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tails.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.tails) and repo (.tails) directories.
// Repo config is found by walking upward from startDir to find the nearest .tails/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tails/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tails", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Capacity = pickInt(overlay.Capacity, base.Capacity)
	result.WatchIntervalMs = pickInt(overlay.WatchIntervalMs, base.WatchIntervalMs)

	result.StateBackend = pickString(overlay.StateBackend, base.StateBackend)
	result.CopyCommand = pickString(overlay.CopyCommand, base.CopyCommand)
	result.CutCommand = pickString(overlay.CutCommand, base.CutCommand)
	result.PasteCommand = pickString(overlay.PasteCommand, base.PasteCommand)
	result.LogLevel = pickString(overlay.LogLevel, base.LogLevel)

	// Tri-state booleans: overlay wins if set, else base
	result.PersistHistory = pickBool(overlay.PersistHistory, base.PersistHistory)
	result.AutocompleteEnabled = pickBool(overlay.AutocompleteEnabled, base.AutocompleteEnabled)
	result.InlineEnabled = pickBool(overlay.InlineEnabled, base.InlineEnabled)

	// Tri-state ints: overlay wins if set, even to 0
	result.ClipLineLimit = pickIntPtr(overlay.ClipLineLimit, base.ClipLineLimit)
	result.MinSingleLineChars = pickIntPtr(overlay.MinSingleLineChars, base.MinSingleLineChars)
	result.RingLineLimit = pickIntPtr(overlay.RingLineLimit, base.RingLineLimit)
	result.InlineMaxLineCount = pickIntPtr(overlay.InlineMaxLineCount, base.InlineMaxLineCount)
	result.CutThrottleMs = pickIntPtr(overlay.CutThrottleMs, base.CutThrottleMs)
	result.DebounceMs = pickIntPtr(overlay.DebounceMs, base.DebounceMs)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate. Patterns and words are kept verbatim
	result.IgnoredRegexes = mergeStringSlice(base.IgnoredRegexes, overlay.IgnoredRegexes, false)
	result.IgnoredWords = mergeStringSlice(base.IgnoredWords, overlay.IgnoredWords, false)
	result.KeywordIgnoredRegexes = mergeStringSlice(base.KeywordIgnoredRegexes, overlay.KeywordIgnoredRegexes, false)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths, true)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools, true)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickBool(overlay, base *bool) *bool {
	if overlay != nil {
		return boolPtr(*overlay)
	}
	if base != nil {
		return boolPtr(*base)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func pickIntPtr(overlay, base *int) *int {
	if overlay != nil {
		return Int(*overlay)
	}
	if base != nil {
		return Int(*base)
	}
	return nil
}

// Int returns a pointer to v, for setting the tri-state integer fields.
func Int(v int) *int {
	return &v
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// mergeStringSlice combines two slices and removes duplicates and empty
// entries. With trim set, entries are whitespace-trimmed first.
func mergeStringSlice(a, b []string, trim bool) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if trim {
				s = strings.TrimSpace(s)
			}
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
