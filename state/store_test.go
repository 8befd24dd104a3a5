package state

import (
	"encoding/json"
	"testing"
	"time"
)

// track is a composite test value exercising the Keyed contract.
type track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (tr track) Field(key string) (any, bool) {
	switch key {
	case "title":
		return tr.Title, true
	case "artist":
		return tr.Artist, true
	}
	return nil, false
}

func TestCache_SetAndGet(t *testing.T) {
	c := NewCache("volume", 50)

	if err := c.Set(json.RawMessage(`80`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get("")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 80 {
		t.Errorf("Get: got %v, want 80", v)
	}
}

func TestCache_SetBadPayload(t *testing.T) {
	c := NewCache("volume", 50)

	if err := c.Set(json.RawMessage(`"not a number"`)); err == nil {
		t.Fatal("Set with mismatched payload: expected error, got nil")
	}
	if c.Value() != 50 {
		t.Errorf("value after failed Set: got %d, want 50", c.Value())
	}
}

func TestCache_Reset(t *testing.T) {
	c := NewCache("volume", 50)
	c.Put(90)

	c.Reset()
	if c.Value() != 50 {
		t.Errorf("value after Reset: got %d, want 50", c.Value())
	}

	// Resetting twice lands on the same value as resetting once.
	c.Reset()
	if c.Value() != 50 {
		t.Errorf("value after second Reset: got %d, want 50", c.Value())
	}
}

func TestCache_GetField(t *testing.T) {
	c := NewCache("nowplaying", track{})
	c.Put(track{Title: "Holocene", Artist: "Bon Iver"})

	v, err := c.Get("title")
	if err != nil {
		t.Fatalf("Get(title): %v", err)
	}
	if v != "Holocene" {
		t.Errorf("Get(title): got %v, want Holocene", v)
	}
}

func TestCache_GetField_Unknown(t *testing.T) {
	c := NewCache("nowplaying", track{})
	if _, err := c.Get("bpm"); err == nil {
		t.Fatal("Get(bpm): expected error for unknown field, got nil")
	}
}

func TestCache_GetField_NotKeyed(t *testing.T) {
	c := NewCache("volume", 50)
	if _, err := c.Get("level"); err == nil {
		t.Fatal("Get on scalar value: expected error, got nil")
	}
}

func TestCache_SelectReceivesUpdates(t *testing.T) {
	c := NewCache("volume", 50)

	sub, err := c.Select("")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	defer sub.Unsubscribe()

	c.Put(70)
	if got := recvAny(t, sub); got != 70 {
		t.Errorf("subscription value: got %v, want 70", got)
	}
}

func TestCache_SelectField(t *testing.T) {
	c := NewCache("nowplaying", track{})

	sub, err := c.Select("artist")
	if err != nil {
		t.Fatalf("Select(artist): %v", err)
	}
	defer sub.Unsubscribe()

	c.Put(track{Title: "Re: Stacks", Artist: "Bon Iver"})
	if got := recvAny(t, sub); got != "Bon Iver" {
		t.Errorf("field subscription value: got %v, want Bon Iver", got)
	}
}

func TestCache_SelectField_NotKeyed(t *testing.T) {
	c := NewCache("volume", 50)
	if _, err := c.Select("level"); err == nil {
		t.Fatal("Select field on scalar value: expected error, got nil")
	}
}

func TestCache_Unsubscribe(t *testing.T) {
	c := NewCache("volume", 50)

	sub, err := c.Select("")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	sub.Unsubscribe()
	sub.Unsubscribe() // second call must be harmless

	if _, ok := <-sub.C; ok {
		t.Fatal("channel still open after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic or block.
	c.Put(60)
}

func TestCache_SlowSubscriberDoesNotBlock(t *testing.T) {
	c := NewCache("volume", 50)

	sub, err := c.Select("")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	defer sub.Unsubscribe()

	// Overfill the subscriber buffer without reading. Put must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subBufSize*2; i++ {
			c.Put(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Put blocked on a slow subscriber")
	}
}

func TestBroadcaster_CloseTerminatesSubscriptions(t *testing.T) {
	c := NewCache("volume", 50)

	sub, err := c.Select("")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	c.closeSubs()

	if _, ok := <-sub.C; ok {
		t.Fatal("channel still open after close")
	}

	// Publishes after close reach nobody and must not panic.
	c.Put(99)

	// New subscriptions on a closed broadcaster are born terminated.
	late, err := c.Select("")
	if err != nil {
		t.Fatalf("Select after close: %v", err)
	}
	if _, ok := <-late.C; ok {
		t.Fatal("late subscription channel open on closed broadcaster")
	}
}

// recvAny reads one value from sub with a deadline.
func recvAny(t *testing.T, sub *Subscription) any {
	t.Helper()
	select {
	case v, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription value")
		return nil
	}
}
