// Package store keeps uploaded and generated datasets in memory for the
// lifetime of the process. Data is lost on restart; the dashboard treats
// every session as self-contained.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoice-insight/internal/domain"
)

// ErrNotFound is returned when no dataset exists under the requested ID.
var ErrNotFound = errors.New("dataset not found")

// Summary is the listing view of a stored dataset.
type Summary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	RowCount       int       `json:"row_count"`
	SourceEncoding string    `json:"source_encoding,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type record struct {
	dataset   *domain.Dataset
	createdAt time.Time
}

// Store is an in-memory dataset store, safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]record
}

// New creates an empty dataset store.
func New() *Store {
	return &Store{datasets: make(map[string]record)}
}

// Save stores the dataset and returns its assigned ID. An empty ID gets a
// fresh UUID; an existing ID overwrites in place.
func (s *Store) Save(ctx context.Context, ds *domain.Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("save dataset: nil dataset")
	}
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.ID] = record{dataset: ds, createdAt: time.Now()}
	return ds.ID, nil
}

// Get retrieves a dataset by ID. The returned dataset is shared and must be
// treated as read-only; every analytical operation already returns new
// artifacts.
func (s *Store) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.dataset, nil
}

// List returns summaries of every stored dataset, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.datasets))
	for id, rec := range s.datasets {
		out = append(out, Summary{
			ID:             id,
			Name:           rec.dataset.Name,
			RowCount:       len(rec.dataset.Rows),
			SourceEncoding: rec.dataset.SourceEncoding,
			CreatedAt:      rec.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a dataset. Deleting an unknown ID is ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.datasets, id)
	return nil
}
