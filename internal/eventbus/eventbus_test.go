package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdeck/internal/domain"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan domain.FetchStartedEvent, 1)
	b.Subscribe(EventFetchStarted, func(e DomainEvent) {
		if ev, ok := e.(domain.FetchStartedEvent); ok {
			got <- ev
		}
	})

	b.Publish(domain.FetchStartedEvent{Token: 7})

	select {
	case ev := <-got:
		assert.Equal(t, uint64(7), ev.Token)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	var first, second int32
	unsubscribe := b.Subscribe(EventFiltersCleared, func(DomainEvent) { atomic.AddInt32(&first, 1) })
	b.Subscribe(EventFiltersCleared, func(DomainEvent) { atomic.AddInt32(&second, 1) })

	unsubscribe()
	b.Publish(domain.FiltersClearedEvent{})

	require.Eventually(t, func() bool { return atomic.LoadInt32(&second) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	b := New()
	defer b.Close()

	var delivered int32
	b.Subscribe(EventFetchFailed, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventFetchFailed, func(DomainEvent) { atomic.AddInt32(&delivered, 1) })

	b.Publish(domain.FetchFailedEvent{Token: 1})
	b.Publish(domain.FetchFailedEvent{Token: 2})

	require.Eventually(t, func() bool { return atomic.LoadInt32(&delivered) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	b := New()
	b.Close()
	b.Close()

	assert.NotPanics(t, func() { b.Publish(domain.FiltersClearedEvent{}) })
}
