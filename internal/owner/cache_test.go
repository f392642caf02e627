package owner

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
)

func TestCacheLooksUpOnce(t *testing.T) {
	calls := 0
	users := func(id uint32) (string, error) {
		calls++
		return fmt.Sprintf("user%d", id), nil
	}
	c := NewCacheWithLookup(8, users, users)

	for i := 0; i < 3; i++ {
		if got := c.User(42); got != "user42" {
			t.Fatalf("expected user42, got %s", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one lookup, got %d", calls)
	}
}

func TestCacheUnknownIDs(t *testing.T) {
	calls := 0
	fail := func(uint32) (string, error) {
		calls++
		return "", errors.New("no such id")
	}
	c := NewCacheWithLookup(8, fail, fail)

	if got := c.User(9999); got != Unknown {
		t.Fatalf("expected %q, got %q", Unknown, got)
	}
	if got := c.Group(9999); got != Unknown {
		t.Fatalf("expected %q, got %q", Unknown, got)
	}
	c.User(9999)
	if calls != 2 {
		t.Fatalf("unknown ids must be cached, got %d lookups", calls)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	calls := map[uint32]int{}
	lookup := func(id uint32) (string, error) {
		calls[id]++
		return fmt.Sprint(id), nil
	}
	c := NewCacheWithLookup(2, lookup, lookup)

	c.User(1)
	c.User(2)
	c.User(1) // 1 is now most recent
	c.User(3) // evicts 2

	if users, _ := c.Len(); users != 2 {
		t.Fatalf("expected 2 cached users, got %d", users)
	}
	c.User(1)
	if calls[1] != 1 {
		t.Fatalf("expected 1 to stay cached, got %d lookups", calls[1])
	}
	c.User(2)
	if calls[2] != 2 {
		t.Fatalf("expected 2 to be evicted and looked up again, got %d lookups", calls[2])
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	var mu sync.Mutex
	lookup := func(id uint32) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprint(id), nil
	}
	c := NewCacheWithLookup(16, lookup, lookup)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := uint32((g + i) % 32)
				if got := c.User(id); got != fmt.Sprint(id) {
					t.Errorf("expected %d, got %s", id, got)
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestCacheResolvesCurrentUser(t *testing.T) {
	c := NewCache(DefaultCacheSize)
	name := c.User(uint32(os.Getuid()))
	if name == "" {
		t.Fatalf("expected a name for the current uid")
	}
}
