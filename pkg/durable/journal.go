package durable

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

var ErrJournalMismatch = errors.New("durable: journal mismatch")

type EntryKind string

const (
	KindRun   EntryKind = "run"
	KindSleep EntryKind = "sleep"
)

type Entry struct {
	Kind   EntryKind `json:"kind"`
	Name   string    `json:"name,omitempty"`
	Value  []byte    `json:"value,omitempty"`
	WakeAt time.Time `json:"wakeAt,omitempty"`
	Done   bool      `json:"done"`
}

// Journal is the ordered list of completed (or started) effects of one invocation.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func (j *Journal) At(i int) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i < 0 || i >= len(j.entries) {
		return Entry{}, false
	}
	return j.entries[i], true
}

func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

func (j *Journal) append(e Entry) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return len(j.entries) - 1
}

func (j *Journal) complete(i int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i >= 0 && i < len(j.entries) {
		j.entries[i].Done = true
	}
}

func mismatch(pos int, have Entry, kind EntryKind, name string) error {
	return fmt.Errorf("%w: entry %d is %s %q, handler asked for %s %q",
		ErrJournalMismatch, pos, have.Kind, have.Name, kind, name)
}

// Store hands out journals by key. Keys come from JournalKey so that an
// invocation ID reused on another handler never sees foreign entries.
type Store interface {
	Load(key string) *Journal
	Drop(key string)
}

// JournalKey scopes an invocation ID to the handler (and object key) it ran on.
func JournalKey(service, handler, key, id string) string {
	return service + "/" + handler + "/" + key + "/" + id
}

// DefaultJournalTTL is how long an untouched journal of a failed invocation
// waits for its retry.
const DefaultJournalTTL = 15 * time.Minute

type storedJournal struct {
	j       *Journal
	touched atomic.Int64 // unix nanos
}

// MemoryStore keeps journals in process memory. Nothing survives a restart,
// and journals not loaded within the TTL are evicted.
type MemoryStore struct {
	journals *xsync.MapOf[string, *storedJournal]
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore { return NewMemoryStoreTTL(DefaultJournalTTL) }

// NewMemoryStoreTTL evicts journals idle for longer than ttl; ttl <= 0 keeps them.
func NewMemoryStoreTTL(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		journals: xsync.NewMapOf[string, *storedJournal](),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(key string) *Journal {
	now := s.now()
	s.evict(now)
	sj, _ := s.journals.LoadOrCompute(key, func() *storedJournal {
		return &storedJournal{j: &Journal{}}
	})
	sj.touched.Store(now.UnixNano())
	return sj.j
}

func (s *MemoryStore) evict(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	cutoff := now.Add(-s.ttl).UnixNano()
	s.journals.Range(func(k string, sj *storedJournal) bool {
		if t := sj.touched.Load(); t != 0 && t < cutoff {
			s.journals.Delete(k)
		}
		return true
	})
}

func (s *MemoryStore) Drop(key string) { s.journals.Delete(key) }

func (s *MemoryStore) Size() int { return s.journals.Size() }

// NopStore hands out a fresh journal every time: nothing is replayed.
type NopStore struct{}

func (NopStore) Load(string) *Journal { return &Journal{} }
func (NopStore) Drop(string)          {}
