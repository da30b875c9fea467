// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedQueuePreservesOrder(t *testing.T) {
	q := newUnboundedQueue[int]()
	for i := 0; i < 5; i++ {
		q.Send(i)
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, <-q.Out())
	}
}

func TestUnboundedQueueNeverBlocksSendOnSlowConsumer(t *testing.T) {
	q := newUnboundedQueue[int]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			q.Send(i)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked despite no consumer reading Out")
	}
}

func TestUnboundedQueueCloseDrainsThenClosesOut(t *testing.T) {
	q := newUnboundedQueue[int]()
	q.Send(1)
	q.Send(2)
	q.Close()

	require.Equal(t, 1, <-q.Out())
	require.Equal(t, 2, <-q.Out())

	v, ok := <-q.Out()
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestUnboundedQueueCloseWithNothingBufferedClosesImmediately(t *testing.T) {
	q := newUnboundedQueue[int]()
	q.Close()

	select {
	case _, ok := <-q.Out():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Out never closed")
	}
}
