// Package docstore serializes whole-document reads and writes of the shared
// user document held in a remote object store.
//
// The document is small and every operation re-reads it, so correctness is
// bought with one process-wide mutex held across the remote I/O. That lock
// is the scalability bottleneck of the design; any partial-write scheme
// would change the whole-document consistency contract and must not be
// introduced silently.
package docstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"device-relay-bot/internal/domain"
	apperrors "device-relay-bot/internal/errors"
	"device-relay-bot/pkg/metrics"
)

// Store is the single access path to the persisted document.
type Store interface {
	// Read fetches the current document. A missing or empty remote object
	// yields an empty document, not an error.
	Read(ctx context.Context) (*domain.Document, error)
	// Write replaces the remote document with doc.
	Write(ctx context.Context, doc *domain.Document) error
}

// remote abstracts the underlying object transport. get returns (nil, nil)
// when the object does not exist.
type remote interface {
	get(ctx context.Context) ([]byte, error)
	put(ctx context.Context, data []byte) error
}

// DocumentStore implements Store over a remote object. All calls share one
// mutex for their full duration, so at most one remote operation is in
// flight and concurrent read-modify-write cycles cannot interleave.
type DocumentStore struct {
	mu     sync.Mutex
	remote remote
	log    *slog.Logger
}

func newDocumentStore(r remote, log *slog.Logger) *DocumentStore {
	if log == nil {
		log = slog.Default()
	}

	return &DocumentStore{remote: r, log: log}
}

// Read implements Store.
func (s *DocumentStore) Read(ctx context.Context) (*domain.Document, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.remote.get(ctx)
	metrics.ObserveDocumentOp("read", err, time.Since(start))
	if err != nil {
		s.log.Error("document read failed", slog.Any("error", err))
		return nil, apperrors.NewStorageError(err)
	}

	if len(data) == 0 {
		return domain.NewDocument(), nil
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Error("document decode failed", slog.Any("error", err))
		return nil, apperrors.NewStorageError(err)
	}
	if doc.Users == nil {
		doc.Users = []*domain.User{}
	}

	return &doc, nil
}

// Write implements Store.
func (s *DocumentStore) Write(ctx context.Context, doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.remote.put(ctx, data)
	metrics.ObserveDocumentOp("write", err, time.Since(start))
	if err != nil {
		s.log.Error("document write failed", slog.Any("error", err))
		return apperrors.NewStorageError(err)
	}

	return nil
}
