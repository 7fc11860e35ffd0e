package tiered

// warmTier is the capacity-bounded middle tier with a per-key access counter.
// The original design held warm values by weak reference and let the garbage
// collector reclaim them under memory pressure; here the tier holds strong
// references and relies on its capacity bound plus lowest-access-count
// demotion to the cold tier instead, which keeps demotion deterministic at
// the cost of the reclaim-anytime release valve. Not self-synchronized: the
// cache mutex covers every call.
type warmTier struct {
	capacity int
	items    map[string][]byte
	hits     map[string]int64
	order    []string // insertion order, for deterministic tie-breaks
}

func newWarmTier(capacity int) *warmTier {
	return &warmTier{
		capacity: capacity,
		items:    make(map[string][]byte, capacity),
		hits:     make(map[string]int64, capacity),
		order:    make([]string, 0, capacity),
	}
}

func (w *warmTier) get(key string) ([]byte, bool) {
	v, ok := w.items[key]
	return v, ok
}

func (w *warmTier) set(key string, val []byte) {
	if _, ok := w.items[key]; !ok {
		w.order = append(w.order, key)
	}
	w.items[key] = val
	w.hits[key]++
}

func (w *warmTier) remove(key string) bool {
	if _, ok := w.items[key]; !ok {
		return false
	}
	delete(w.items, key)
	delete(w.hits, key)
	return true
}

// victim selects the key with the lowest access count; ties break by
// insertion order, oldest first.
func (w *warmTier) victim() (string, bool) {
	w.compact()
	var found bool
	var victim string
	var min int64
	for _, key := range w.order {
		if _, ok := w.items[key]; !ok {
			continue
		}
		if !found || w.hits[key] < min {
			found = true
			victim = key
			min = w.hits[key]
		}
	}
	return victim, found
}

func (w *warmTier) over() bool { return len(w.items) > w.capacity }

func (w *warmTier) len() int { return len(w.items) }

func (w *warmTier) clear() {
	w.items = make(map[string][]byte, w.capacity)
	w.hits = make(map[string]int64, w.capacity)
	w.order = w.order[:0]
}

// compact drops removed keys from the insertion-order slice once they
// outnumber the live ones.
func (w *warmTier) compact() {
	if len(w.order) <= 2*len(w.items) {
		return
	}
	live := w.order[:0]
	for _, key := range w.order {
		if _, ok := w.items[key]; ok {
			live = append(live, key)
		}
	}
	w.order = live
}
