// Package history archives terminal swap attempts to a local JSON file so
// past swaps survive across sessions.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"blink-swap/pkg/executor"
)

// DefaultFileName is the history file kept in the user's home directory.
const DefaultFileName = ".blink-swap-history.json"

// Record is one archived swap attempt.
type Record struct {
	ID            string    `json:"id"`
	InputSymbol   string    `json:"input_symbol"`
	OutputSymbol  string    `json:"output_symbol"`
	InAmount      string    `json:"in_amount"`
	OutAmount     string    `json:"out_amount"`
	Status        string    `json:"status"`
	Failure       string    `json:"failure,omitempty"`
	FailureDetail string    `json:"failure_detail,omitempty"`
	Signature     string    `json:"signature,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// RecordFromAttempt converts a terminal attempt to its archive form.
func RecordFromAttempt(a *executor.SwapAttempt) Record {
	rec := Record{
		ID:            a.ID,
		Status:        string(a.Status),
		Failure:       string(a.Failure),
		FailureDetail: a.FailureDetail,
		CreatedAt:     a.CreatedAt,
		CompletedAt:   a.CompletedAt,
	}
	if a.Route != nil {
		rec.InputSymbol = a.Route.Request.InputAsset.Symbol
		rec.OutputSymbol = a.Route.Request.OutputAsset.Symbol
		rec.InAmount = a.Route.InAmountDisplay().String()
		rec.OutAmount = a.Route.OutAmountDisplay().String()
	}
	if !a.Signature.IsZero() {
		rec.Signature = a.Signature.String()
	}
	return rec
}

// Storage persists records to a JSON file.
type Storage struct {
	filePath string
	mu       sync.RWMutex
	records  []Record
}

type fileFormat struct {
	Records []Record `json:"records"`
}

// NewStorage opens the history file, creating state for a fresh file when it
// does not exist yet. An empty path defaults to the home directory.
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	s := &Storage{filePath: filePath}
	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to load history")
		}
	}
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return errors.Wrap(err, "failed to unmarshal history")
	}
	s.records = ff.Records
	return nil
}

func (s *Storage) save() error {
	data, err := json.MarshalIndent(fileFormat{Records: s.records}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal history")
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	// write to a temporary file and rename for an atomic save
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write history")
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return errors.Wrap(err, "failed to rename temp file")
	}
	return nil
}

// Append archives a record and persists the file.
func (s *Storage) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.save()
}

// List returns all records, newest first.
func (s *Storage) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec
	}
	return out
}

// Count returns the number of archived records.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FilePath returns the backing file path.
func (s *Storage) FilePath() string {
	return s.filePath
}
