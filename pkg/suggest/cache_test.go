package suggest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func entry(word string) []Suggestion {
	return []Suggestion{{Word: word, Score: 1}}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	a, b, d := Key{"a", 6}, Key{"b", 6}, Key{"d", 6}

	c.Add(a, entry("a"))
	c.Add(b, entry("b"))

	// touching a makes b the oldest
	if _, ok := c.Get(a); !ok {
		t.Fatal("a should be cached")
	}

	added, evicted := c.Add(d, entry("d"))
	if added != 1 || evicted != 1 {
		t.Errorf("Add reported added=%d evicted=%d, want 1/1", added, evicted)
	}
	if c.lru.Contains(b) {
		t.Error("b should have been evicted")
	}
	if !c.lru.Contains(a) || !c.lru.Contains(d) {
		t.Error("a and d should be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheKeyIncludesLimit(t *testing.T) {
	c := NewCache(8)
	c.Add(Key{"ny", 3}, entry("three"))
	c.Add(Key{"ny", 6}, entry("six"))

	got, ok := c.Get(Key{"ny", 3})
	if !ok || got[0].Word != "three" {
		t.Errorf("Get(ny,3) = %v, %v", got, ok)
	}
	got, ok = c.Get(Key{"ny", 6})
	if !ok || got[0].Word != "six" {
		t.Errorf("Get(ny,6) = %v, %v", got, ok)
	}
}

func TestCacheReAddReplaces(t *testing.T) {
	c := NewCache(2)
	k := Key{"x", 1}
	c.Add(k, entry("old"))

	added, evicted := c.Add(k, entry("new"))
	if added != 0 || evicted != 0 {
		t.Errorf("re-add reported added=%d evicted=%d", added, evicted)
	}
	got, _ := c.Get(k)
	if got[0].Word != "new" {
		t.Errorf("got %q, want new", got[0].Word)
	}
}

func TestCacheStatsAndPurge(t *testing.T) {
	c := NewCache(1)
	c.Add(Key{"a", 1}, entry("a"))
	c.Add(Key{"b", 1}, entry("b"))
	c.Get(Key{"b", 1})
	c.Get(Key{"a", 1})

	st := c.Stats()
	want := CacheStats{Entries: 1, Capacity: 1, Hits: 1, Misses: 1, Evictions: 1}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}

	if n := c.Purge(); n != 1 {
		t.Errorf("Purge = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len after purge = %d", c.Len())
	}
	if st := c.Stats(); st.Hits != 1 || st.Evictions != 1 {
		t.Errorf("purge should keep counters and not count evictions: %+v", st)
	}
}

func TestNewCacheDefaultCapacity(t *testing.T) {
	for _, n := range []int{0, -5} {
		if got := NewCache(n).Stats().Capacity; got != DefaultCapacity {
			t.Errorf("NewCache(%d) capacity = %d", n, got)
		}
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(16)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := Key{Text: fmt.Sprintf("k%d", (w*7+i)%40), Limit: 6}
				if _, ok := c.Get(k); !ok {
					c.Add(k, entry(k.Text))
				}
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
