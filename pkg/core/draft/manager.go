package draft

import (
	"hash/fnv"
	"sync"

	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

const lockStripes = 256

// Manager hands out draft stores. Every store of a user shares one lock, so
// concurrent requests for the same user serialize whichever store they hold.
type Manager struct {
	scratch ports.ScratchStorage
	locks   [lockStripes]sync.Mutex
}

func NewManager(scratch ports.ScratchStorage) *Manager {
	return &Manager{scratch: scratch}
}

// For returns the draft store of uid.
func (m *Manager) For(uid string) *Store {
	h := fnv.New32a()
	_, _ = h.Write([]byte(uid))
	s := NewStore(m.scratch, uid)
	s.mu = &m.locks[h.Sum32()%lockStripes]
	return s
}
