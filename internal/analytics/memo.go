package analytics

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cache"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
)

type memoEntry struct {
	summary Summary
	ok      bool
}

// Memo caches Summarize results keyed by a fingerprint of the input content,
// so re-rendering an unchanged history does not re-aggregate it.
type Memo struct {
	cache *cache.LRU[string, memoEntry]
	group singleflight.Group
}

// NewMemo creates a memo holding up to size summaries for ttl each.
func NewMemo(size int, ttl time.Duration) *Memo {
	return &Memo{cache: cache.NewLRU[string, memoEntry](size, ttl)}
}

// Summary returns the memoized result of Summarize(expenses, today).
func (m *Memo) Summary(expenses []core.Expense, today core.Date) (Summary, bool) {
	key := Fingerprint(expenses, today)
	if e, ok := m.cache.Get(key); ok {
		return clone(e.summary), e.ok
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		s, ok := Summarize(expenses, today)
		e := memoEntry{summary: s, ok: ok}
		m.cache.Set(key, e)
		return e, nil
	})
	e := v.(memoEntry)
	return clone(e.summary), e.ok
}

// Stats reports hit/miss counters of the backing cache.
func (m *Memo) Stats() cache.Stats {
	return m.cache.Stats()
}

// CleanExpired drops expired summaries so a cache.Janitor can sweep the memo.
func (m *Memo) CleanExpired() int {
	return m.cache.CleanExpired()
}

// Fingerprint hashes every field that influences a summary.
func Fingerprint(expenses []core.Expense, today core.Date) string {
	d := xxhash.New()
	var buf [8]byte
	_, _ = d.WriteString(today.String())
	for _, e := range expenses {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(e.ID)
		_, _ = d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Amount.Cents))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(e.Category)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(e.Date.String())
	}
	return strconv.FormatUint(d.Sum64(), 16) + ":" + strconv.Itoa(len(expenses))
}

func clone(s Summary) Summary {
	if s.Categories != nil {
		s.Categories = append([]CategoryShare(nil), s.Categories...)
	}
	return s
}
