// Package index owns the in-memory paste metadata map and its durable
// JSON snapshot. The whole index is rewritten on every mutation; at
// pastebin scale this is a deliberate simplicity/durability trade-off,
// and the known scalability ceiling of the design.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/quickpaste/quickpaste/models"
)

const snapshotFile = "index.json"

// Index maps paste ids to metadata records, mirrored to a snapshot file.
// All methods are safe for concurrent use; every successful mutation has
// been persisted before it returns.
type Index struct {
	mu      sync.RWMutex
	path    string
	records map[string]*models.Paste
	order   []string
}

// New returns an index whose snapshot lives under dataDir. Call Load
// before serving requests.
func New(dataDir string) *Index {
	return &Index{
		path:    filepath.Join(dataDir, snapshotFile),
		records: make(map[string]*models.Paste),
	}
}

// Load reads the snapshot if present, drops every record already expired,
// and persists the cleaned snapshot when anything was removed. It returns
// the ids of the dropped records so the caller can delete their content
// blobs. Runs once at startup.
func (ix *Index) Load() ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	data, err := os.ReadFile(ix.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index snapshot: %w", err)
	}

	records := make(map[string]*models.Paste)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse index snapshot: %w", err)
	}

	now := time.Now()
	var expired []string
	for id, rec := range records {
		rec.ID = id
		if rec.IsExpiredAt(now) {
			expired = append(expired, id)
			delete(records, id)
		}
	}

	ix.records = records
	ix.rebuildOrder()

	if len(expired) > 0 {
		if err := ix.persist(); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// rebuildOrder reconstructs insertion order from creation timestamps.
// The snapshot is a plain id->record map, so ordering is not stored;
// creation time is equivalent since records are never edited.
func (ix *Index) rebuildOrder() {
	order := make([]string, 0, len(ix.records))
	for id := range ix.records {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := ix.records[order[i]], ix.records[order[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	ix.order = order
}

// Insert adds a new record and persists the snapshot before returning.
func (ix *Index) Insert(p *models.Paste) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.records[p.ID]; ok {
		return fmt.Errorf("duplicate paste id: %s", p.ID)
	}

	ix.records[p.ID] = p
	ix.order = append(ix.order, p.ID)

	if err := ix.persist(); err != nil {
		// Roll back so memory and disk stay consistent.
		delete(ix.records, p.ID)
		ix.order = ix.order[:len(ix.order)-1]
		return err
	}
	return nil
}

// Remove deletes the record for id if present and persists the snapshot.
// Removing an absent id is a no-op, not an error; callers that need a
// not-found result check existence first.
func (ix *Index) Remove(id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rec, ok := ix.records[id]
	if !ok {
		return nil
	}

	delete(ix.records, id)
	pos := -1
	for i, v := range ix.order {
		if v == id {
			pos = i
			ix.order = append(ix.order[:i], ix.order[i+1:]...)
			break
		}
	}

	if err := ix.persist(); err != nil {
		// Roll back so memory and disk stay consistent.
		ix.records[id] = rec
		if pos >= 0 {
			ix.order = append(ix.order, "")
			copy(ix.order[pos+1:], ix.order[pos:])
			ix.order[pos] = id
		}
		return err
	}
	return nil
}

// Get returns the record for id, or false if absent.
func (ix *Index) Get(id string) (*models.Paste, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	p, ok := ix.records[id]
	return p, ok
}

// Exists reports whether id is present.
func (ix *Index) Exists(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.records[id]
	return ok
}

// List returns up to limit records in insertion order. A non-positive
// limit returns everything.
func (ix *Index) List(limit int) []*models.Paste {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	n := len(ix.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*models.Paste, 0, n)
	for _, id := range ix.order[:n] {
		out = append(out, ix.records[id])
	}
	return out
}

// Expired returns the ids of all records expired relative to now.
func (ix *Index) Expired(now time.Time) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var ids []string
	for id, rec := range ix.records {
		if rec.IsExpiredAt(now) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of live records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

// persist writes the full snapshot. Callers must hold the write lock.
func (ix *Index) persist() error {
	data, err := json.MarshalIndent(ix.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index snapshot: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index snapshot: %w", err)
	}
	return nil
}
