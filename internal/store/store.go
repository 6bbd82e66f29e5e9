// Package store keeps versioned lead snapshots per data source and persists them as JSONL.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
		"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lead-insights/internal/leads"
)

// LeadStore provides thread-safe storage of lead snapshots, partitioned by source.
// Every mutation hands out a new version, unique across the store's lifetime.
type LeadStore struct {
	mu        sync.RWMutex
	snapshots map[string]*snapshot
	seq       uint64
}

type snapshot struct {
	leads   []leads.Lead
	index   map[string]bool
	version uint64
	updated time.Time
}

// NewLeadStore creates a new empty LeadStore.
func NewLeadStore() *LeadStore {
	return &LeadStore{
		snapshots: make(map[string]*snapshot),
	}
}

// Replace swaps the snapshot for a source and returns its new version.
// The leads are kept exactly as given, repeats included.
func (s *LeadStore) Replace(sourceID string, ls []leads.Lead) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &snapshot{
		leads: make([]leads.Lead, len(ls)),
		index: make(map[string]bool, len(ls)),
	}
	copy(snap.leads, ls)
	for _, l := range ls {
		if l.ID != "" {
			snap.index[l.ID] = true
		}
	}
	s.seq++
	snap.version = s.seq
	snap.updated = time.Now()
	s.snapshots[sourceID] = snap
	return snap.version
}

// Append adds leads whose ID is not yet present for the source, preserving arrival order.
// Leads without an ID are always added. It returns how many were added; the
// version only moves when that is non-zero.
func (s *LeadStore) Append(sourceID string, ls []leads.Lead) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[sourceID]
	if !ok {
		snap = &snapshot{index: make(map[string]bool)}
	}

	// Copy-on-write so slices handed out by Snapshot stay untouched.
	next := make([]leads.Lead, len(snap.leads), len(snap.leads)+len(ls))
	copy(next, snap.leads)

	added := 0
	for _, l := range ls {
		if l.ID != "" {
			if snap.index[l.ID] {
				continue
			}
			snap.index[l.ID] = true
		}
		next = append(next, l)
		added++
	}

	if added == 0 {
		return 0
	}

	s.seq++
	snap.leads = next
	snap.version = s.seq
	snap.updated = time.Now()
	s.snapshots[sourceID] = snap
	return added
}

// Snapshot returns the leads for a source and the version they belong to.
// The returned slice must not be modified.
func (s *LeadStore) Snapshot(sourceID string) ([]leads.Lead, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[sourceID]
	if !ok {
		return []leads.Lead{}, 0
	}
	return snap.leads, snap.version
}

// Version returns the current version for a source, 0 when absent.
func (s *LeadStore) Version(sourceID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snapshots[sourceID]; ok {
		return snap.version
	}
	return 0
}

// UpdatedAt returns when the source's snapshot last changed.
func (s *LeadStore) UpdatedAt(sourceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snapshots[sourceID]; ok {
		return snap.updated
	}
	return time.Time{}
}

// Count returns the number of leads stored for a source.
func (s *LeadStore) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.snapshots[sourceID]; ok {
		return len(snap.leads)
	}
	return 0
}

// Load reads leads from a JSONL cache file for the given source. An unknown source
// is restored exactly as saved; otherwise the cached leads are merged with Append.
// A missing file is not an error.
func (s *LeadStore) Load(cacheDir string, sourceID string) error {
	ls, err := ReadFile(CachePath(cacheDir, sourceID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache yet, not an error
		}
		return err
	}

	log.Info().Str("source", sourceID).Int("count", len(ls)).Msg("Loaded leads from cache")
	if s.Version(sourceID) == 0 {
		s.Replace(sourceID, ls)
		return nil
	}
	s.Append(sourceID, ls)
	return nil
}

// Save persists the source's snapshot to a JSONL cache file.
func (s *LeadStore) Save(cacheDir string, sourceID string) error {
	ls, _ := s.Snapshot(sourceID)
	if len(ls) == 0 {
		return nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := CachePath(cacheDir, sourceID)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if err := WriteJSONL(file, ls); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(ls)).Msg("Lead snapshot saved to cache")
	return nil
}

// CachePath returns the JSONL file used for a source.
func CachePath(cacheDir, sourceID string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", sourceID))
}

// DeleteCache removes the cache file for a source.
func DeleteCache(cacheDir, sourceID string) error {
	err := os.Remove(CachePath(cacheDir, sourceID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteJSONL encodes one lead per line.
func WriteJSONL(w io.Writer, ls []leads.Lead) error {
	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)
	for _, l := range ls {
		if err := encoder.Encode(l); err != nil {
			return fmt.Errorf("failed to encode lead %s: %w", l.ID, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// ReadJSONL decodes one lead per line. Blank and invalid lines are skipped.
func ReadJSONL(r io.Reader) ([]leads.Lead, error) {
	var out []leads.Lead
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var l leads.Lead
		if err := json.Unmarshal(raw, &l); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping invalid JSON line")
			continue
		}
		out = append(out, l)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading leads: %w", err)
	}
	return out, nil
}

// ReadFile loads leads from a .jsonl file, or from a .json file holding an array.
func ReadFile(path string) ([]leads.Lead, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var ls []leads.Lead
		if err := json.NewDecoder(file).Decode(&ls); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return ls, nil
	}
	return ReadJSONL(file)
}
