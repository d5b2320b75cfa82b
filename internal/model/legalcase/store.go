package legalcase

// Store exposes example case retrieval for HTTP handlers.
type Store interface {
	List() []Case
	FindByID(id string) (Case, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Case
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied cases.
func NewMemoryStore(items []Case) *MemoryStore {
	return &MemoryStore{items: append([]Case(nil), items...)}
}

// List returns the predefined case list.
func (s *MemoryStore) List() []Case {
	return append([]Case(nil), s.items...)
}

// FindByID looks up a case by identifier.
func (s *MemoryStore) FindByID(id string) (Case, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Case{}, false
}
