// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/lifefork/lifefork/internal/observability"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
)

// DefaultBuffer is the number of frames a slow stream client may lag
// behind before frames are dropped for it.
const DefaultBuffer = 64

// Frame is the JSON text message pushed to stream clients for every
// layer snapshot.
type Frame struct {
	RunID     string         `json:"run_id"`
	Scenario  string         `json:"scenario"`
	Layer     int            `json:"layer"`
	Timestamp int            `json:"timestamp"`
	Worlds    []world.Record `json:"worlds"`
}

// NewFrame builds the stream frame for a snapshot.
func NewFrame(snap snapshot.Snapshot) Frame {
	doc := snap.Document()
	return Frame{
		RunID:     snap.RunID,
		Scenario:  snap.Scenario,
		Layer:     snap.Layer,
		Timestamp: doc.Timestamp,
		Worlds:    doc.Worlds,
	}
}

// Hub fans encoded frames out to stream subscribers. It is a
// snapshot.Sink, so runs write to it like any other sink.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub whose subscribers buffer up to buffer frames.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[chan []byte]struct{}), buffer: buffer}
}

// Subscribe returns a channel receiving every broadcast frame. The channel
// is closed by Unsubscribe or Close. Subscribing to a closed hub returns
// an already closed channel.
func (h *Hub) Subscribe() chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []byte, h.buffer)
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes ch. Unknown channels are ignored.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast delivers data to every subscriber without blocking.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			// The run never waits for a slow client.
			observability.RecordDroppedFrame()
			slog.Warn("stream frame dropped: subscriber buffer full", "bytes", len(data))
		}
	}
}

// Write encodes snap as a Frame and broadcasts it.
func (h *Hub) Write(_ context.Context, snap snapshot.Snapshot) error {
	data, err := json.Marshal(NewFrame(snap))
	if err != nil {
		return oops.With("scenario", snap.Scenario).With("layer", snap.Layer).Wrapf(err, "encode stream frame")
	}
	h.Broadcast(data)
	return nil
}

// Close closes every subscriber channel. Later subscriptions are closed
// immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
