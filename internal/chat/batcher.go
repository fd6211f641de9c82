package chat

import "sync"

// Batcher accumulates messages until either the size threshold is hit or
// the periodic flush drains it, whichever comes first. Draining swaps
// the buffer out under the lock, so a batch can never be flushed twice
// even when both triggers race.
type Batcher struct {
	mu   sync.Mutex
	buf  []Message
	size int
}

func NewBatcher(size int) *Batcher {
	return &Batcher{size: size}
}

// Add appends m and, when the buffer just reached the size threshold,
// returns the drained batch.
func (b *Batcher) Add(m Message) ([]Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, m)
	if len(b.buf) < b.size {
		return nil, false
	}
	batch := b.buf
	b.buf = nil
	return batch, true
}

// Drain hands back whatever has accumulated, leaving the buffer empty.
func (b *Batcher) Drain() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.buf
	b.buf = nil
	return batch
}

func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}
