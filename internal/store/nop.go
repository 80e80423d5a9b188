package store

import "github.com/lacedup/footwork/internal/model"

// NopStore is a no-op seen-store used in dry-run mode. It never marks
// postings as seen, so every posting appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(id string) (bool, error) { return false, nil }
func (s *NopStore) MarkSeen(p model.Posting) error  { return nil }

// NopCatalog discards appended postings; dry-run mode pairs it with NopStore
// so a run leaves no trace on disk.
type NopCatalog struct{}

func NewNopCatalog() *NopCatalog { return &NopCatalog{} }

func (c *NopCatalog) Append(p model.Posting) error             { return nil }
func (c *NopCatalog) All() ([]model.Posting, error)            { return nil, nil }
func (c *NopCatalog) Remove(id string) error                   { return nil }
func (c *NopCatalog) SetApplied(id string, applied bool) error { return nil }
