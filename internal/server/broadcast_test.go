package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcast_ToAllDeliversToEveryConnection(t *testing.T) {
	cr := NewConnectionRegistry()
	b := NewBroadcaster(cr)

	sinks := []chan []byte{
		make(chan []byte, 4),
		make(chan []byte, 4),
		make(chan []byte, 4),
	}
	for i, sink := range sinks {
		cr.Add(string(rune('a'+i)), sink, nil)
	}

	b.ToAll(EventChatMessage, ChatMessage{From: "X", Text: "hi"})

	for _, sink := range sinks {
		assert.Len(t, sink, 1)
		var ev receivedEvent
		assert.NoError(t, json.Unmarshal(<-sink, &ev))
		assert.Equal(t, EventChatMessage, ev.Type)
	}
}

func TestBroadcast_ToUnknownConnectionIsNoOp(t *testing.T) {
	cr := NewConnectionRegistry()
	b := NewBroadcaster(cr)

	// Must not panic or error; delivery to a vanished connection is swallowed.
	b.ToConnection("ghost", EventMatchReset, struct{}{})
	b.ToSeated([]*SeatOccupant{nil, {ConnectionID: "ghost"}}, EventMatchReset, struct{}{})
}

func TestBroadcast_FullSinkDropsInsteadOfBlocking(t *testing.T) {
	cr := NewConnectionRegistry()
	b := NewBroadcaster(cr)

	sink := make(chan []byte, 1)
	cr.Add("slow", sink, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.ToConnection("slow", EventPositionUpdate, PositionUpdate{FEN: "one"})
		b.ToConnection("slow", EventPositionUpdate, PositionUpdate{FEN: "two"})
	}()
	<-done

	assert.Len(t, sink, 1, "second frame is dropped, caller never blocks")
}

func TestBroadcast_ToSeatedDeliversToOccupantsOnly(t *testing.T) {
	cr := NewConnectionRegistry()
	b := NewBroadcaster(cr)

	whiteSink := make(chan []byte, 4)
	obsSink := make(chan []byte, 4)
	cr.Add("white", whiteSink, nil)
	cr.Add("obs", obsSink, nil)

	b.ToSeated([]*SeatOccupant{{ConnectionID: "white", Name: "Alice"}}, EventAwaitingOpponent, struct{}{})

	assert.Len(t, whiteSink, 1)
	assert.Empty(t, obsSink)
}
