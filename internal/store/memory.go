// Package store holds generated bytes between the generation response and a
// follow-up download request. Entries are the only state that outlives a
// request, and they expire.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown and expired download ids. Callers
// cannot distinguish the two cases; both mean the handle is gone.
var ErrNotFound = errors.New("store: download not found or expired")

// Entry is one retrievable download.
type Entry struct {
	Data      []byte
	MIME      string
	ExpiresAt time.Time
}

// Memory is an in-process download store. Entries stay retrievable until
// expiry (repeated GETs are allowed; clients may safely retry a download).
// A janitor goroutine sweeps expired entries so abandoned downloads do not
// accumulate.
type Memory struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]Entry
	done    chan struct{}
	once    sync.Once
}

// NewMemory creates a store whose entries live for ttl and starts the
// janitor. Close must be called to stop it.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	m := &Memory{
		ttl:     ttl,
		entries: make(map[string]Entry),
		done:    make(chan struct{}),
	}
	go m.sweep(ttl / 2)
	return m
}

// Put stores the bytes under a fresh opaque id.
func (m *Memory) Put(data []byte, mime string) (string, time.Time, error) {
	if len(data) == 0 {
		return "", time.Time{}, errors.New("store: empty payload")
	}
	id := uuid.NewString()
	expires := time.Now().Add(m.ttl)
	m.mu.Lock()
	m.entries[id] = Entry{Data: data, MIME: mime, ExpiresAt: expires}
	m.mu.Unlock()
	return id, expires, nil
}

// Get returns the entry for id, or ErrNotFound if the id is unknown or the
// entry has expired.
func (m *Memory) Get(id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(m.entries, id)
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Len reports the number of live entries, expired or not yet swept included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the janitor. Safe to call more than once.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) sweep(every time.Duration) {
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for id, entry := range m.entries {
				if now.After(entry.ExpiresAt) {
					delete(m.entries, id)
				}
			}
			m.mu.Unlock()
		}
	}
}
