package store

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()

	payload := []byte("png-bytes")
	id, expires, err := m.Put(payload, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expiry %v is not in the future", expires)
	}

	entry, err := m.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(entry.Data, payload) || entry.MIME != "image/png" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	// Repeated retrieval is allowed until expiry.
	if _, err := m.Get(id); err != nil {
		t.Fatalf("second get failed: %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(10 * time.Millisecond)
	defer m.Close()

	id, _, err := m.Put([]byte("short-lived"), "video/mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := m.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryUnknownID(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	if _, err := m.Get("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryRejectsEmptyPayload(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	if _, _, err := m.Put(nil, "image/png"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()

	var wg sync.WaitGroup
	ids := make([]string, 32)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := m.Put([]byte{byte(i)}, "image/png")
			if err != nil {
				t.Errorf("put %d: %v", i, err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		entry, err := m.Get(id)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if len(entry.Data) != 1 || entry.Data[0] != byte(i) {
			t.Fatalf("entry %d corrupted: %v", i, entry.Data)
		}
	}
}

func TestMemoryJanitorSweeps(t *testing.T) {
	m := NewMemory(5 * time.Millisecond)
	defer m.Close()

	for i := 0; i < 4; i++ {
		if _, _, err := m.Put([]byte("x"), "image/png"); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.Len() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("janitor did not sweep, %d entries remain", m.Len())
}
