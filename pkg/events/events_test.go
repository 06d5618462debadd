package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-dns/pkg/dispatch"
	"github.com/joeydtaylor/steeze-dns/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func change(op string, id uint32) dispatch.Change {
	return dispatch.Change{Op: op, Record: registry.Record{ID: id}}
}

func TestAsyncPublishesInOrder(t *testing.T) {
	rec := &recorder{}
	a := NewAsync(rec, 8, zaptest.NewLogger(t))
	a.Run()
	a.Offer(change("register", 0))
	a.Offer(change("update", 0))
	a.Offer(change("remove", 0))
	a.Close()

	require.Len(t, rec.events, 3)
	assert.Equal(t, "register", rec.events[0].Change.Op)
	assert.Equal(t, "remove", rec.events[2].Change.Op)
	assert.False(t, rec.events[0].At.IsZero())
	assert.Equal(t, 0, a.Dropped())
}

func TestAsyncDropsWhenFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	a := NewAsync(rec, 1, zaptest.NewLogger(t))
	// not running yet: the queue fills after one event
	a.Offer(change("register", 0))
	a.Offer(change("register", 1))
	a.Offer(change("register", 2))
	assert.Equal(t, 2, a.Dropped())

	a.Run()
	close(rec.block)
	a.Close()
	require.Len(t, rec.events, 1)
	assert.Equal(t, uint32(0), rec.events[0].Change.Record.ID)
}

func TestEventEncode(t *testing.T) {
	ev := Event{
		Topic:  "dns.records",
		At:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Change: dispatch.Change{Op: "register", Caller: "c", Record: registry.Record{ID: 1, Name: "<x>"}},
	}
	b, err := ev.Encode()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "dns.records", back["topic"])
	assert.Contains(t, string(b), `"name":"<x>"`)
}

func TestNewRelayFromEnvWithoutTargetIsNoop(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "")
	p, err := NewRelayFromEnv()
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}

func TestParseKV(t *testing.T) {
	assert.Nil(t, parseKV(""))
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, parseKV(" a=1, ,b=x=y,bad"))
	assert.Equal(t, []string{"h1:1", "h2:2"}, splitCSV("h1:1, ,h2:2"))
}

func TestOfferAfterCloseDrops(t *testing.T) {
	drops := 0
	a := NewAsync(&recorder{}, 4, zaptest.NewLogger(t))
	a.OnDrop(func() { drops++ })
	a.Run()
	a.Close()

	assert.NotPanics(t, func() { a.Offer(change("register", 0)) })
	assert.Equal(t, 1, a.Dropped())
	assert.Equal(t, 1, drops)
	a.Close()
}

func TestNewRelayFromEnvRejectsBadKey(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "127.0.0.1:1")
	t.Setenv("ELECTRICIAN_ENCRYPT", "aesgcm")
	t.Setenv("ELECTRICIAN_AES256_KEY_HEX", "abcd")
	p, err := NewRelayFromEnv()
	assert.Error(t, err)
	assert.Nil(t, p)
}
