package apicache

import (
	"container/list"
	"sync"
	"time"
)

// entry is one cached value with its expiry
// a zero expiresAt means the entry never expires
type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Memory is an in-process Cache bounded by entry count
// The most recently used entry sits at the front of the list
type Memory struct {
	mu     sync.Mutex
	maxLen int
	ll     *list.List
	index  map[string]*list.Element

	// seam for tests
	now func() time.Time
}

// NewMemory builds a Memory cache holding at most maxLen entries
// maxLen <= 0 means unbounded
func NewMemory(maxLen int) *Memory {
	return &Memory{
		maxLen: maxLen,
		ll:     list.New(),
		index:  make(map[string]*list.Element),
		now:    time.Now,
	}
}

// Get returns the live value for key and promotes it to most recently used
// An expired entry is removed and reported as a miss
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.index[key]
	if !ok {
		return nil, false
	}
	en := el.Value.(*entry)
	if !en.expiresAt.IsZero() && !m.now().Before(en.expiresAt) {
		m.removeLocked(el)
		return nil, false
	}
	m.ll.MoveToFront(el)
	return en.value, true
}

// Set stores value under key for ttl, evicting the least recently used
// entry when the cache is full; ttl <= 0 stores without an expiry
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	if el, ok := m.index[key]; ok {
		en := el.Value.(*entry)
		en.value = value
		en.expiresAt = expires
		m.ll.MoveToFront(el)
		return
	}

	el := m.ll.PushFront(&entry{key: key, value: value, expiresAt: expires})
	m.index[key] = el

	if m.maxLen > 0 && m.ll.Len() > m.maxLen {
		if back := m.ll.Back(); back != nil {
			m.removeLocked(back)
		}
	}
}

// Len reports the current number of entries, expired ones included
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ll.Len()
}

// Close drops all entries
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ll.Init()
	m.index = make(map[string]*list.Element)
}

func (m *Memory) removeLocked(el *list.Element) {
	en := el.Value.(*entry)
	m.ll.Remove(el)
	delete(m.index, en.key)
}

var _ Cache = (*Memory)(nil)
