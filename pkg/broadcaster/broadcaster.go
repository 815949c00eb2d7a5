// Package broadcaster implements a trivial fan-out event broadcaster using generics.
package broadcaster

import (
	"errors"
	"slices"
	"sync"
)

var ErrDuplicateChannel = errors.New("duplicate channel registration")

type Broadcaster[V any] struct {
	readers   []chan<- V
	readersMu sync.RWMutex
}

func New[V any]() *Broadcaster[V] {
	return &Broadcaster[V]{}
}

// Consume registers a channel to receive all emitted events. Readers should use a
// buffered channel, Emit blocks on slow consumers.
func (eb *Broadcaster[V]) Consume(eventChan chan V) error {
	eb.readersMu.Lock()
	defer eb.readersMu.Unlock()

	if slices.Contains(eb.readers, (chan<- V)(eventChan)) {
		return ErrDuplicateChannel
	}

	eb.readers = append(eb.readers, eventChan)

	return nil
}

// Unregister removes a previously registered channel.
func (eb *Broadcaster[V]) Unregister(eventChan chan V) {
	eb.readersMu.Lock()
	defer eb.readersMu.Unlock()

	var remaining []chan<- V

	for _, reader := range eb.readers {
		if reader != (chan<- V)(eventChan) {
			remaining = append(remaining, reader)
		}
	}

	eb.readers = remaining
}

// Emit sends the value to all registered reader channels.
func (eb *Broadcaster[V]) Emit(value V) {
	eb.readersMu.RLock()
	defer eb.readersMu.RUnlock()

	for _, reader := range eb.readers {
		reader <- value
	}
}
