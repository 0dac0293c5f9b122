package library

import (
	"context"

	"github.com/rs/zerolog"
)

// Fetcher loads the flat library listing from the backend.
type Fetcher interface {
	Structure(ctx context.Context) (Structure, error)
}

// Store holds the current library snapshot plus the sidebar's view state.
// It is not safe for concurrent use; callers mutate it from one event loop.
type Store struct {
	fetcher Fetcher
	log     zerolog.Logger

	data Structure
	tree []*Node

	expanded map[string]bool
	checked  map[string]bool
	activeID string

	issued  uint64
	applied uint64
	loaded  bool
}

// NewStore creates an empty Store backed by fetcher.
func NewStore(fetcher Fetcher, log zerolog.Logger) *Store {
	return &Store{
		fetcher:  fetcher,
		log:      log.With().Str("component", "library").Logger(),
		expanded: make(map[string]bool),
		checked:  make(map[string]bool),
	}
}

// Begin reserves a sequence number for a refresh about to be issued.
func (s *Store) Begin() uint64 {
	s.issued++
	return s.issued
}

// Apply installs data fetched by request seq and rebuilds the tree. A response
// to a request older than the last applied one is discarded and Apply returns
// false.
func (s *Store) Apply(seq uint64, data Structure) bool {
	if seq < s.applied {
		s.log.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("dropping stale library response")
		return false
	}
	s.applied = seq
	s.loaded = true
	s.replace(data)
	return true
}

// Fail records a failed refresh. The previous tree stays in place.
func (s *Store) Fail(seq uint64, err error) {
	s.log.Warn().Err(err).Uint64("seq", seq).Msg("library refresh failed")
}

// Seed shows a cached snapshot until the first live response arrives.
func (s *Store) Seed(data Structure) {
	if s.loaded {
		return
	}
	s.replace(data)
}

// Refresh fetches the listing and rebuilds the tree. On failure the error is
// logged and returned, and the previous tree remains.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.Begin()
	data, err := s.fetcher.Structure(ctx)
	if err != nil {
		s.Fail(seq, err)
		return err
	}
	s.Apply(seq, data)
	return nil
}

func (s *Store) replace(data Structure) {
	s.data = data
	s.tree = BuildTree(data)
	for id := range s.checked {
		if Find(s.tree, id) == nil {
			delete(s.checked, id)
		}
	}
}

// Loaded reports whether a live response has been applied.
func (s *Store) Loaded() bool { return s.loaded }

// Data returns the flat listing of the current snapshot.
func (s *Store) Data() Structure { return s.data }

// Tree returns the root nodes of the current snapshot.
func (s *Store) Tree() []*Node { return s.tree }

// Rows returns the visible rows given the current expansion state.
func (s *Store) Rows() []Row { return Visible(s.tree, s.Expanded) }

// Lookup finds a node by id in the current snapshot.
func (s *Store) Lookup(id string) *Node { return Find(s.tree, id) }

// ToggleFolder flips whether the folder id is expanded.
func (s *Store) ToggleFolder(id string) {
	if s.expanded[id] {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = true
}

// Expanded reports whether the folder id is expanded.
func (s *Store) Expanded(id string) bool { return s.expanded[id] }

// SetActive marks the entry highlighted as the open tab. Pass "" for none.
func (s *Store) SetActive(id string) { s.activeID = id }

// Active returns the highlighted entry id.
func (s *Store) Active() string { return s.activeID }

// ToggleChecked flips whether a session or document is selected as chat context.
func (s *Store) ToggleChecked(id string) {
	if s.checked[id] {
		delete(s.checked, id)
		return
	}
	s.checked[id] = true
}

// IsChecked reports whether id is selected as chat context.
func (s *Store) IsChecked(id string) bool { return s.checked[id] }

// Checked returns the selected ids in tree order.
func (s *Store) Checked() []string {
	var ids []string
	Walk(s.tree, func(n *Node, _ int) {
		if s.checked[n.ID] {
			ids = append(ids, n.ID)
		}
	})
	return ids
}
