package tiered

import "container/list"

type hotEntry struct {
	key string
	val []byte
}

// hotTier is the capacity-bounded top tier. It is the sole strong holder of
// a value while the value is resident here; list order reflects recency, the
// back element is the LRU victim. Not self-synchronized: the cache mutex
// covers every call.
type hotTier struct {
	capacity int
	ll       *list.List
	idx      map[string]*list.Element
}

func newHotTier(capacity int) *hotTier {
	return &hotTier{
		capacity: capacity,
		ll:       list.New(),
		idx:      make(map[string]*list.Element, capacity),
	}
}

func (h *hotTier) get(key string) ([]byte, bool) {
	el, ok := h.idx[key]
	if !ok {
		return nil, false
	}
	h.ll.MoveToFront(el)
	return el.Value.(*hotEntry).val, true
}

func (h *hotTier) set(key string, val []byte) {
	if el, ok := h.idx[key]; ok {
		el.Value.(*hotEntry).val = val
		h.ll.MoveToFront(el)
		return
	}
	h.idx[key] = h.ll.PushFront(&hotEntry{key: key, val: val})
}

func (h *hotTier) remove(key string) bool {
	el, ok := h.idx[key]
	if !ok {
		return false
	}
	h.ll.Remove(el)
	delete(h.idx, key)
	return true
}

// popLRU removes and returns the least recently used entry.
func (h *hotTier) popLRU() (string, []byte, bool) {
	el := h.ll.Back()
	if el == nil {
		return "", nil, false
	}
	e := el.Value.(*hotEntry)
	h.ll.Remove(el)
	delete(h.idx, e.key)
	return e.key, e.val, true
}

func (h *hotTier) full() bool { return h.ll.Len() >= h.capacity }

func (h *hotTier) len() int { return h.ll.Len() }

func (h *hotTier) clear() {
	h.ll.Init()
	h.idx = make(map[string]*list.Element, h.capacity)
}
