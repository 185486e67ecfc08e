package chain

import (
	"container/list"
	"fmt"
	"sync"
)

// errExceedMaxCount is returned by Manager.Register once a namespace has
// reached its configured command_max_count, per spec.md §4.8.
var errExceedMaxCount = newError(ErrExceedMaxCount, "command registration would exceed the namespace's max count")

// lruCache is a small fixed-capacity, O(1) least-recently-used cache over
// Arparma results, keyed by input fingerprint; Manager keeps one cache per
// namespace. No bounded
// LRU library appears anywhere in the retrieval pack, so this is built on
// container/list per DESIGN.md's justification.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element
}

type lruEntry struct {
	key   uint64
	value Arparma
}

func newLRUCache(capacity int) *lruCache {
	if capacity <= 0 {
		capacity = 1
	}

	return &lruCache{capacity: capacity, ll: list.New(), items: map[uint64]*list.Element{}}
}

func (c *lruCache) get(key uint64) (Arparma, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Arparma{}, false
	}

	c.ll.MoveToFront(el)

	return el.Value.(*lruEntry).value, true
}

func (c *lruCache) put(key uint64, value Arparma) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).value = value
		c.ll.MoveToFront(el)

		return
	}

	el := c.ll.PushFront(&lruEntry{key: key, value: value})
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

// Manager is the process-wide registry spec.md §4.8 names: namespaced
// Command storage, a bounded per-namespace result cache, and a disable
// list.
type Manager struct {
	mu           sync.RWMutex
	commands     map[string]map[string]*Command
	maxCount     map[string]int
	caches       map[string]*lruCache
	cacheSize    int
	disabled     map[string]bool
}

// NewManager builds a Manager whose per-namespace result caches hold up
// to cacheSize entries.
func NewManager(cacheSize int) *Manager {
	if cacheSize <= 0 {
		cacheSize = 128
	}

	return &Manager{
		commands:  map[string]map[string]*Command{},
		maxCount:  map[string]int{},
		caches:    map[string]*lruCache{},
		cacheSize: cacheSize,
		disabled:  map[string]bool{},
	}
}

// SetMaxCount bounds how many commands namespace may hold.
func (m *Manager) SetMaxCount(namespace string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maxCount[namespace] = n
}

// Register adds cmd under namespace/name, failing with ErrExceedMaxCount
// if the namespace is already at its configured limit.
func (m *Manager) Register(namespace, name string, cmd *Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.commands[namespace]
	if !ok {
		bucket = map[string]*Command{}
		m.commands[namespace] = bucket
	}

	if _, exists := bucket[name]; !exists {
		if max, set := m.maxCount[namespace]; set && len(bucket) >= max {
			return errExceedMaxCount
		}
	}

	cmd.Namespace = namespace
	bucket[name] = cmd

	return nil
}

// Delete removes a registered command.
func (m *Manager) Delete(namespace, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bucket, ok := m.commands[namespace]; ok {
		delete(bucket, name)
	}
}

// Resolve looks up a registered command without error.
func (m *Manager) Resolve(namespace, name string) (*Command, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.commands[namespace]
	if !ok {
		return nil, false
	}

	cmd, ok := bucket[name]

	return cmd, ok
}

// Require is like Resolve but returns an error instead of ok=false.
func (m *Manager) Require(namespace, name string) (*Command, error) {
	cmd, ok := m.Resolve(namespace, name)
	if !ok {
		return nil, fmt.Errorf("%w: no command %q registered in namespace %q", errExecuteFailed, name, namespace)
	}

	return cmd, nil
}

// Broadcast invokes fn for every command registered under namespace.
func (m *Manager) Broadcast(namespace string, fn func(name string, cmd *Command)) {
	m.mu.RLock()
	bucket := m.commands[namespace]
	snapshot := make(map[string]*Command, len(bucket))

	for k, v := range bucket {
		snapshot[k] = v
	}

	m.mu.RUnlock()

	for k, v := range snapshot {
		fn(k, v)
	}
}

// AllCommandHelp renders GetHelp for every command in namespace.
func (m *Manager) AllCommandHelp(namespace string) []string {
	var out []string

	m.Broadcast(namespace, func(_ string, cmd *Command) {
		out = append(out, cmd.GetHelp())
	})

	return out
}

// Enable clears namespace's disable flag.
func (m *Manager) Enable(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.disabled, namespace)
}

// Disable sets namespace's disable flag, making IsDisable report true.
func (m *Manager) Disable(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disabled[namespace] = true
}

// IsDisable reports whether namespace has been disabled.
func (m *Manager) IsDisable(namespace string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.disabled[namespace]
}

func (m *Manager) cacheFor(namespace string) *lruCache {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.caches[namespace]
	if !ok {
		c = newLRUCache(m.cacheSize)
		m.caches[namespace] = c
	}

	return c
}

// GetRecord looks up a cached Arparma by input fingerprint.
func (m *Manager) GetRecord(namespace string, fingerprint uint64) (Arparma, bool) {
	return m.cacheFor(namespace).get(fingerprint)
}

// Record stores a completed Arparma keyed by input fingerprint.
func (m *Manager) Record(namespace string, fingerprint uint64, result Arparma) {
	m.cacheFor(namespace).put(fingerprint, result)
}

// ParseCached runs cmd.Parse(input), consulting and then populating the
// Manager's cache for cmd.Namespace when EnableMessageCache is set,
// mirroring spec.md §4.5 step 1/§8 property 2.
func (m *Manager) ParseCached(cmd *Command, input any) (Arparma, error) {
	if !cmd.Config.EnableMessageCache {
		return cmd.Parse(input)
	}

	tokens, err := cmd.toTokens(input)
	if err != nil {
		return Arparma{}, err
	}

	fp := GenerateToken(tokens)

	if cached, ok := m.GetRecord(cmd.Namespace, fp); ok {
		logDebug(cmd.Config, "cache hit", "namespace", cmd.Namespace, "fingerprint", fp)

		return cached, nil
	}

	logDebug(cmd.Config, "cache miss", "namespace", cmd.Namespace, "fingerprint", fp)

	res, err := cmd.Parse(input)
	if err != nil {
		return res, err
	}

	if res.Matched {
		m.Record(cmd.Namespace, fp, res)
	}

	return res, nil
}
