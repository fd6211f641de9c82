package chat

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcherCountTrigger(t *testing.T) {
	b := NewBatcher(10)

	for i := 0; i < 9; i++ {
		batch, full := b.Add(Message{Data: strconv.Itoa(i)})
		assert.False(t, full)
		assert.Nil(t, batch)
	}

	batch, full := b.Add(Message{Data: "9"})
	require.True(t, full)
	assert.Len(t, batch, 10)
	assert.Zero(t, b.Len(), "buffer cleared by the size trigger")

	// The next message starts a fresh batch.
	_, full = b.Add(Message{Data: "10"})
	assert.False(t, full)
	assert.Equal(t, 1, b.Len())
}

func TestBatcherDrain(t *testing.T) {
	b := NewBatcher(10)
	b.Add(Message{Data: "only"})

	batch := b.Drain()
	require.Len(t, batch, 1)
	assert.Equal(t, "only", batch[0].Data)
	assert.Zero(t, b.Len())

	assert.Empty(t, b.Drain(), "drain of an empty buffer yields nothing")
}

func TestBatcherNoDoubleFlush(t *testing.T) {
	b := NewBatcher(3)
	b.Add(Message{Data: "a"})
	b.Add(Message{Data: "b"})

	batch, full := b.Add(Message{Data: "c"})
	require.True(t, full)
	require.Len(t, batch, 3)

	// A timer firing right after the size trigger sees an empty buffer.
	assert.Empty(t, b.Drain())
}
