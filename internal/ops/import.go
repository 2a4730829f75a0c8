package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hpungsan/tails/internal/clip"
	"github.com/hpungsan/tails/internal/errors"
)

// ImportMode controls how an import treats bad lines and the existing history.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // any bad line aborts; otherwise merge
	ImportModeMerge   ImportMode = "merge"   // skip bad lines, merge by recency
	ImportModeReplace ImportMode = "replace" // skip bad lines, file replaces history
)

// maxImportLine bounds one JSONL line.
const maxImportLine = 4 * 1024 * 1024

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is one export line; the header line has TailsExport set.
type importRecord struct {
	clip.Entry
	TailsExport bool `json:"_tails_export"`
}

// Import loads clips from a JSONL export. Merged clips are ordered with the
// existing ones by capture time, and the usual dedup and capacity apply.
func (s *Session) Import(ctx context.Context, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	switch input.Mode {
	case ImportModeError, ImportModeMerge, ImportModeReplace:
	default:
		return nil, errors.NewInvalidRequest("mode must be one of: error, merge, replace")
	}

	cfg := s.Config()
	if err := ValidatePath(input.Path, PathCheckRead, cfg, s.exportsDir()); err != nil {
		return nil, err
	}
	file, err := openBackup(input.Path, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExport(file)
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("import")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := make(map[string]bool, s.store.Len())
	combined := records
	if input.Mode != ImportModeReplace {
		existing := s.store.Snapshot()
		for _, e := range existing {
			before[e.ID] = true
		}
		combined = append(existing, records...)
		// Stable: on equal timestamps existing clips stay ahead
		sort.SliceStable(combined, func(i, j int) bool {
			return combined[i].CreatedAt > combined[j].CreatedAt
		})
	}
	s.store.Load(combined)
	s.ring.Reset()

	imported := 0
	for _, e := range s.store.Snapshot() {
		if !before[e.ID] {
			imported++
		}
	}

	s.changed(ctx)
	s.saveState(ctx)

	errs := parseErrors
	if errs == nil {
		errs = []ImportError{}
	}
	return &ImportOutput{
		Imported: imported,
		Skipped:  len(records) - imported + len(parseErrors),
		Errors:   errs,
	}, nil
}

// parseExport reads clip records, skipping the header line.
func parseExport(r io.Reader) ([]clip.Entry, []ImportError) {
	var records []clip.Entry
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxImportLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if rec.TailsExport {
			continue
		}
		if len(rec.Lines) == 0 {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      rec.ID,
				Code:    "INVALID_RECORD",
				Message: "missing lines field",
			})
			continue
		}
		records = append(records, rec.Entry)
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	return records, parseErrors
}
