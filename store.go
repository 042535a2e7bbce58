package shotman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/root4loot/goutils/log"
)

// historyLimit caps the scan history; the oldest entry is evicted on
// overflow.
const historyLimit = 20

// HistoryEntry is one completed scan in the rotating history log.
// Entries are immutable and ordered newest first.
type HistoryEntry struct {
	Date       string `json:"date"`
	InputFile  string `json:"input_file"`
	OutputDir  string `json:"output_dir"`
	TotalURLs  int    `json:"total_urls"`
	Successful int    `json:"successful"`
}

// Store holds the capture results of the running process: the in-memory
// list of saved images (completion order) and the durable filename to
// source-URL mapping.
//
// Store is not safe for concurrent mutation. The session controller
// serializes all writes through its outcome-processing loop, so the
// mapping itself needs no locking.
type Store struct {
	MappingFile string
	HistoryFile string

	images  []string
	mapping map[string]string
}

// NewStore creates a Store backed by the given mapping and history files.
func NewStore(mappingFile, historyFile string) *Store {
	return &Store{
		MappingFile: mappingFile,
		HistoryFile: historyFile,
		mapping:     make(map[string]string),
	}
}

// Load reads the URL mapping from disk. A missing file is not an error;
// the store starts empty.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.MappingFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not read mapping file: %w", err)
	}

	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return fmt.Errorf("could not parse mapping file: %w", err)
	}

	s.mapping = mapping
	return nil
}

// Record registers a successful outcome: the saved path is appended to the
// image list and the mapping entry for its file name is upserted. Failed
// outcomes are ignored.
func (s *Store) Record(outcome Outcome) {
	if !outcome.Success() || outcome.Path == "" {
		return
	}
	s.images = append(s.images, outcome.Path)
	s.mapping[filepath.Base(outcome.Path)] = outcome.URL
}

// Images returns the saved image paths in completion order.
func (s *Store) Images() []string {
	images := make([]string, len(s.images))
	copy(images, s.images)
	return images
}

// SourceURL returns the origin URL a file name was captured from.
func (s *Store) SourceURL(filename string) (string, bool) {
	u, ok := s.mapping[filename]
	return u, ok
}

// Persist writes the full URL mapping to disk, replacing prior content.
// Call it once per batch, not per outcome.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode mapping: %w", err)
	}
	if err := os.WriteFile(s.MappingFile, data, 0644); err != nil {
		return fmt.Errorf("could not write mapping file: %w", err)
	}
	return nil
}

// History returns the scan history, newest first. A missing history file
// yields an empty history.
func (s *Store) History() ([]HistoryEntry, error) {
	data, err := os.ReadFile(s.HistoryFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read history file: %w", err)
	}

	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("could not parse history file: %w", err)
	}
	return history, nil
}

// AppendHistory inserts the entry at the front of the history and
// truncates it to the most recent entries.
func (s *Store) AppendHistory(entry HistoryEntry) error {
	history, err := s.History()
	if err != nil {
		log.Warnf("History load error: %v", err)
		history = nil
	}

	history = append([]HistoryEntry{entry}, history...)
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode history: %w", err)
	}
	if err := os.WriteFile(s.HistoryFile, data, 0644); err != nil {
		return fmt.Errorf("could not write history file: %w", err)
	}
	return nil
}

// Delete removes a saved image along with its mapping entry and persists
// the updated mapping.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("could not delete %s: %w", path, err)
	}

	delete(s.mapping, filepath.Base(path))

	for i, img := range s.images {
		if img == path {
			s.images = append(s.images[:i], s.images[i+1:]...)
			break
		}
	}

	return s.Persist()
}
