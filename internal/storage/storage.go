package storage

import (
	"sync"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

// Storage provides serialised access to the inspection ledger.
type Storage interface {
	Inspect(piece inspection.Piece) inspection.Piece
	Remove(id string) bool
	Report() inspection.Report
	Approved() []inspection.Piece
	Rejected() []inspection.Piece
	ClosedBoxes() []inspection.Box
	OpenBox() inspection.Box
	Pieces() []inspection.Piece
	Lookup(id string) (inspection.Piece, bool)
	Contains(id string) bool
	Snapshot() ([]inspection.Piece, inspection.Report)
}

// MemoryStorage keeps one ledger in-memory and guards access with a RWMutex.
// Mutations hold the write lock, so ledger event handlers run under it and
// must not call back into the storage.
type MemoryStorage struct {
	mu     sync.RWMutex
	ledger *inspection.Ledger
}

// NewMemoryStorage initialises storage with an empty ledger built from opts.
func NewMemoryStorage(opts ...inspection.Option) *MemoryStorage {
	return &MemoryStorage{
		ledger: inspection.NewLedger(opts...),
	}
}

// Inspect classifies and records the piece.
func (s *MemoryStorage) Inspect(piece inspection.Piece) inspection.Piece {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Inspect(piece)
}

// Remove deletes the piece with the given id.
func (s *MemoryStorage) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Remove(id)
}

func (s *MemoryStorage) Report() inspection.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Report()
}

func (s *MemoryStorage) Approved() []inspection.Piece {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Approved()
}

func (s *MemoryStorage) Rejected() []inspection.Piece {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Rejected()
}

func (s *MemoryStorage) ClosedBoxes() []inspection.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.ClosedBoxes()
}

func (s *MemoryStorage) OpenBox() inspection.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.OpenBox()
}

func (s *MemoryStorage) Pieces() []inspection.Piece {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Pieces()
}

func (s *MemoryStorage) Lookup(id string) (inspection.Piece, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Lookup(id)
}

func (s *MemoryStorage) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Contains(id)
}

// Snapshot returns pieces and report read under a single lock so exports see
// a consistent view.
func (s *MemoryStorage) Snapshot() ([]inspection.Piece, inspection.Report) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Pieces(), s.ledger.Report()
}
