// Package session implements an in-memory, expiry-driven session registry:
// a grow-only slot table, lazily swept of expired entries on access, with
// a compact percent-encoded payload per session and secure,
// fixed-alphabet identifiers.
package session

import (
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/kinderr"
)

// idLength is the fixed session identifier length.
const idLength = 32

// idAlphabet is the URL-safe 64-character set each ID byte is drawn from.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// defaultCapacity is the store's initial slot count.
const defaultCapacity = 64

// Session is a single entry in the store. Callers never retain a *Session
// across a Cleanup call; find/create return a borrowed reference valid
// until the next sweep evicts it.
type Session struct {
	id      string
	expires time.Time
	payload string
}

// ID returns the session's 32-character identifier.
func (s *Session) ID() string { return s.id }

// ExpiresAt returns the session's expiry wall-clock time.
func (s *Session) ExpiresAt() time.Time { return s.expires }

// Store is a process-local table of sessions. It is safe for concurrent
// use from multiple goroutines within one worker process, though in
// practice only the loop goroutine touches it.
type Store struct {
	mu sync.Mutex
	// slots holds one *Session per slot. Growth appends new pointers
	// rather than reallocating a value slice, so a *Session returned by
	// Create/Find stays valid even if a later Create doubles the table.
	slots       []*Session
	initialized bool
	log         *logrus.Entry
}

var fallbackCounter uint32

// New creates an uninitialized session store.
func New(log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{log: log.WithField("component", "session")}
}

// Init allocates the table at its default capacity. Idempotent.
func (st *Store) Init() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.initialized {
		return
	}
	st.slots = newEmptySlots(defaultCapacity)
	st.initialized = true
}

func newEmptySlots(n int) []*Session {
	slots := make([]*Session, n)
	for i := range slots {
		slots[i] = &Session{}
	}
	return slots
}

// Cleanup frees all payloads and the table itself.
func (st *Store) Cleanup() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.slots = nil
	st.initialized = false
}

// sweepLocked removes expired slots. Caller holds st.mu.
func (st *Store) sweepLocked(now time.Time) {
	for _, s := range st.slots {
		if s.id != "" && now.After(s.expires) {
			*s = Session{}
		}
	}
}

// Create allocates a new session with the given lifetime, lazily sweeping
// expired slots first and growing the table (capacity doubles) if full.
func (st *Store) Create(maxAge time.Duration) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.initialized {
		st.slots = newEmptySlots(defaultCapacity)
		st.initialized = true
	}

	now := time.Now()
	st.sweepLocked(now)

	var slot *Session
	for _, s := range st.slots {
		if s.id == "" {
			slot = s
			break
		}
	}
	if slot == nil {
		oldLen := len(st.slots)
		st.slots = append(st.slots, newEmptySlots(oldLen)...)
		slot = st.slots[oldLen]
	}

	id, err := generateID(st.log)
	if err != nil {
		return nil, kinderr.Wrap(kinderr.Internal, "session id generation failed", err)
	}

	*slot = Session{id: id, expires: now.Add(maxAge)}
	return slot, nil
}

// Find returns the session for id if it exists and has not expired.
func (st *Store) Find(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	st.sweepLocked(now)

	for _, s := range st.slots {
		if s.id == id && now.Before(s.expires) {
			return s, true
		}
	}
	return nil, false
}

// Free zeroes the identifier and releases the payload, returning the slot
// to the free pool.
func (st *Store) Free(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, slot := range st.slots {
		if slot == s {
			*slot = Session{}
			return
		}
	}
}

// ValueSet percent-encodes key, removes any existing pair for it, and
// appends the new encoded pair, rejecting writes that would exceed the
// 4096-byte payload cap.
func (st *Store) ValueSet(s *Session, key, value string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	encoded, fits := setValue(s.payload, encodeKV(key), encodeKV(value))
	if !fits {
		return kinderr.New(kinderr.Protocol, "session payload exceeds 4096 bytes")
	}
	s.payload = encoded
	return nil
}

// ValueGet returns the decoded value for key, if present.
func (st *Store) ValueGet(s *Session, key string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return getValue(s.payload, encodeKV(key))
}

// ValueRemove excises the pair for key, if present.
func (st *Store) ValueRemove(s *Session, key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.payload = removeValue(s.payload, encodeKV(key))
}

// generateID draws idLength bytes of cryptographic randomness and reduces
// each modulo 64 into idAlphabet. Falls back to a mixed, logged source if
// the cryptographic source is unavailable.
func generateID(log *logrus.Entry) (string, error) {
	entropy := make([]byte, idLength)
	_, err := rand.Read(entropy)
	if err != nil {
		log.WithError(err).Warn("crypto/rand unavailable, using fallback session id source")
		fallbackEntropy(entropy)
	}

	out := make([]byte, idLength)
	for i, b := range entropy {
		out[i] = idAlphabet[b%64]
	}
	// Zero the source buffer after use.
	for i := range entropy {
		entropy[i] = 0
	}
	return string(out), nil
}

// fallbackEntropy mixes the current time, process id, a monotonically
// increasing counter, and an address-space-derived value. It is not
// cryptographically secure and is only reached when the
// OS random source itself has failed.
func fallbackEntropy(buf []byte) {
	var x uint64
	var stackVar int
	seed := uint64(time.Now().UnixNano())
	seed ^= uint64(os.Getpid())
	fallbackCounter++
	seed ^= uint64(fallbackCounter)
	seed ^= uint64(uintptr(unsafe.Pointer(&stackVar))) >> 3

	for i := range buf {
		seed = seed*6364136223846793005 + 1442695040888963407
		x = seed
		buf[i] = byte(x >> 56)
	}
}

// CookieName is the fixed session cookie name.
const CookieName = "session"

// String implements fmt.Stringer for diagnostics.
func (s *Session) String() string {
	return fmt.Sprintf("session{id=%s expires=%s}", s.id, s.expires.Format(time.RFC3339))
}
