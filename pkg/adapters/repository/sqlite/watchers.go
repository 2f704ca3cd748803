package sqlite

import (
	"hash/fnv"
	"sync"

	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

const deliveryStripes = 64

// watcher is one subscription. version is the collection version of the
// last snapshot it received and is only touched under the collection's
// delivery lock.
type watcher struct {
	fn      ports.SnapshotFunc
	version int64
}

type watchers struct {
	mu     sync.Mutex
	nextID int
	byColl map[string]map[int]*watcher

	delivery [deliveryStripes]sync.Mutex
}

func newWatchers() *watchers {
	return &watchers{byColl: make(map[string]map[int]*watcher)}
}

// lock serializes snapshot delivery for collection.
func (w *watchers) lock(collection string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(collection))
	return &w.delivery[h.Sum32()%deliveryStripes]
}

func (w *watchers) add(collection string, fn ports.SnapshotFunc) (int, *watcher) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	if w.byColl[collection] == nil {
		w.byColl[collection] = make(map[int]*watcher)
	}
	wt := &watcher{fn: fn}
	w.byColl[collection][w.nextID] = wt
	return w.nextID, wt
}

func (w *watchers) remove(collection string, id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.byColl[collection], id)
	if len(w.byColl[collection]) == 0 {
		delete(w.byColl, collection)
	}
}

// get returns a copy so callbacks run without the lock.
func (w *watchers) get(collection string) []*watcher {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws := make([]*watcher, 0, len(w.byColl[collection]))
	for _, wt := range w.byColl[collection] {
		ws = append(ws, wt)
	}
	return ws
}

func (w *watchers) collections() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.byColl))
	for c := range w.byColl {
		out = append(out, c)
	}
	return out
}
