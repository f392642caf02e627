package owner

import (
	"container/list"
	"os/user"
	"strconv"
	"sync"
)

// Unknown is returned for ids with no passwd or group entry.
const Unknown = "unknown"

// DefaultCacheSize bounds each id-to-name cache.
const DefaultCacheSize = 1024

type cacheEntry struct {
	key   uint32
	value string
}

// lru is a bounded id-to-name map with least-recently-used eviction.
type lru struct {
	mu    sync.Mutex
	max   int
	ll    *list.List
	items map[uint32]*list.Element
}

func newLRU(max int) *lru {
	if max < 1 {
		max = 1
	}
	return &lru{
		max:   max,
		ll:    list.New(),
		items: make(map[uint32]*list.Element),
	}
}

func (c *lru) Get(key uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(cacheEntry).value, true
	}
	return "", false
}

func (c *lru) Set(key uint32, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value = cacheEntry{key: key, value: value}
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(cacheEntry{key: key, value: value})
	c.items[key] = el

	if c.ll.Len() > c.max {
		last := c.ll.Back()
		if last == nil {
			return
		}
		c.ll.Remove(last)
		delete(c.items, last.Value.(cacheEntry).key)
	}
}

func (c *lru) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// LookupFunc resolves a numeric id to a name.
type LookupFunc func(id uint32) (string, error)

// Cache resolves user and group ids to names. Create one per program run and
// pass it to whatever renders entries; it is safe for concurrent use.
type Cache struct {
	users       *lru
	groups      *lru
	lookupUser  LookupFunc
	lookupGroup LookupFunc
}

// NewCache creates a cache backed by the system user and group databases.
func NewCache(size int) *Cache {
	return NewCacheWithLookup(size, lookupUser, lookupGroup)
}

// NewCacheWithLookup creates a cache with custom lookup functions.
func NewCacheWithLookup(size int, users, groups LookupFunc) *Cache {
	return &Cache{
		users:       newLRU(size),
		groups:      newLRU(size),
		lookupUser:  users,
		lookupGroup: groups,
	}
}

// User returns the login name for uid, or Unknown.
func (c *Cache) User(uid uint32) string {
	return resolve(c.users, c.lookupUser, uid)
}

// Group returns the group name for gid, or Unknown.
func (c *Cache) Group(gid uint32) string {
	return resolve(c.groups, c.lookupGroup, gid)
}

// Len returns the number of cached users and groups.
func (c *Cache) Len() (users, groups int) {
	return c.users.Len(), c.groups.Len()
}

func resolve(cache *lru, lookup LookupFunc, id uint32) string {
	if name, ok := cache.Get(id); ok {
		return name
	}
	name, err := lookup(id)
	if err != nil || name == "" {
		name = Unknown
	}
	cache.Set(id, name)
	return name
}

func lookupUser(uid uint32) (string, error) {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

func lookupGroup(gid uint32) (string, error) {
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return "", err
	}
	return g.Name, nil
}
