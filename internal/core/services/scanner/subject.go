package scanner

import (
	"sync"

	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// updateSubject fans snapshot updates out to subscribers. Each subscriber
// holds at most one pending update; a slow reader only ever sees the latest.
type updateSubject struct {
	mu   sync.RWMutex
	subs map[chan domain.SnapshotUpdate]struct{}
}

func newUpdateSubject() *updateSubject {
	return &updateSubject{
		subs: make(map[chan domain.SnapshotUpdate]struct{}),
	}
}

// subscribe registers a new subscriber and returns its channel and a cancel func.
func (s *updateSubject) subscribe() (<-chan domain.SnapshotUpdate, func()) {
	ch := make(chan domain.SnapshotUpdate, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// notify never blocks the writer.
func (s *updateSubject) notify(update domain.SnapshotUpdate) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- update:
			continue
		default:
		}
		// Replace the stale pending update with the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- update:
		default:
		}
	}
}

func (s *updateSubject) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
