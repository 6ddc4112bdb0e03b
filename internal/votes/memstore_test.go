package votes

import (
	"context"
	"sync"
)

type voteKey struct {
	user   uint
	target Target
}

// memStore is an in-memory Store and Reader. Transactions are serialised
// and undo their own writes when fn fails.
type memStore struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	targets map[Target]bool
	votes   map[voteKey]Direction
	writes  int
	undo    []func()

	// beforeCreate, when set, runs just before a create is applied. Tests
	// use it to simulate a concurrent writer.
	beforeCreate func(s *memStore, k voteKey)
}

func newMemStore(targets ...Target) *memStore {
	s := &memStore{
		targets: make(map[Target]bool),
		votes:   make(map[voteKey]Direction),
	}
	for _, t := range targets {
		s.targets[t] = true
	}
	return s
}

func (s *memStore) seed(target Target, dirs ...Direction) {
	for i, d := range dirs {
		s.votes[voteKey{user: uint(1000 + i), target: target}] = d
	}
}

func (s *memStore) all(target Target) []Direction {
	var out []Direction
	for k, d := range s.votes {
		if k.target == target {
			out = append(out, d)
		}
	}
	return out
}

func (s *memStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.undo = nil
	if err := fn(s); err != nil {
		s.mu.Lock()
		for i := len(s.undo) - 1; i >= 0; i-- {
			s.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// restore records how to put k back to its current state.
func (s *memStore) restore(k voteKey) {
	prev, had := s.votes[k]
	s.undo = append(s.undo, func() {
		if had {
			s.votes[k] = prev
		} else {
			delete(s.votes, k)
		}
	})
}

func (s *memStore) TargetExists(ctx context.Context, target Target) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets[target], nil
}

func (s *memStore) Find(ctx context.Context, userID uint, target Target) (Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[voteKey{userID, target}], nil
}

func (s *memStore) Create(ctx context.Context, userID uint, target Target, dir Direction) error {
	k := voteKey{userID, target}
	if s.beforeCreate != nil {
		s.beforeCreate(s, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.votes[k]; ok {
		return ErrDuplicateVote
	}
	s.restore(k)
	s.votes[k] = dir
	s.writes++
	return nil
}

func (s *memStore) Update(ctx context.Context, userID uint, target Target, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voteKey{userID, target}
	if _, ok := s.votes[k]; !ok {
		return ErrVoteMissing
	}
	s.restore(k)
	s.votes[k] = dir
	s.writes++
	return nil
}

func (s *memStore) Delete(ctx context.Context, userID uint, target Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := voteKey{userID, target}
	if _, ok := s.votes[k]; !ok {
		return ErrVoteMissing
	}
	s.restore(k)
	delete(s.votes, k)
	s.writes++
	return nil
}

func (s *memStore) Directions(ctx context.Context, kind Kind, ids []uint) (map[uint][]Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint][]Direction)
	for _, id := range ids {
		t := Target{Kind: kind, ID: id}
		for k, d := range s.votes {
			if k.target == t {
				out[id] = append(out[id], d)
			}
		}
	}
	return out, nil
}

func (s *memStore) UserDirections(ctx context.Context, userID uint, kind Kind, ids []uint) (map[uint]Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]Direction)
	for _, id := range ids {
		if d, ok := s.votes[voteKey{userID, Target{Kind: kind, ID: id}}]; ok {
			out[id] = d
		}
	}
	return out, nil
}

type countingRecorder struct {
	mu         sync.Mutex
	votes      map[Action]int
	resolved   int
	unresolved int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{votes: make(map[Action]int)}
}

func (r *countingRecorder) ObserveVote(kind Kind, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[action]++
}

func (r *countingRecorder) ObserveConflict(kind Kind, resolved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resolved {
		r.resolved++
	} else {
		r.unresolved++
	}
}
