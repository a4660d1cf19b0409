package events

import (
	"testing"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

func TestHubFanOutAndUnsubscribe(t *testing.T) {
	h := NewHub()
	_, a, unsubA := h.Subscribe("u1", 4)
	_, b, unsubB := h.Subscribe("u1", 4)
	_, other, unsubOther := h.Subscribe("u2", 4)
	defer unsubOther()

	h.Publish("u1", model.ProjectEvent{Seq: 1, Type: model.EventStateChanged})
	if evt := <-a; evt.Seq != 1 {
		t.Fatalf("a got %+v", evt)
	}
	if evt := <-b; evt.Seq != 1 {
		t.Fatalf("b got %+v", evt)
	}
	select {
	case evt := <-other:
		t.Fatalf("event leaked across topics: %+v", evt)
	default:
	}

	unsubA()
	unsubA()
	if _, open := <-a; open {
		t.Fatalf("channel not closed after unsubscribe")
	}
	if h.Subscribers("u1") != 1 {
		t.Fatalf("subscribers=%d", h.Subscribers("u1"))
	}
	unsubB()
	if h.Subscribers("u1") != 0 {
		t.Fatalf("topic not cleaned up")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	_, ch, unsub := h.Subscribe("u1", 1)
	defer unsub()
	for i := 0; i < 10; i++ {
		h.Publish("u1", model.ProjectEvent{Seq: int64(i)})
	}
	if evt := <-ch; evt.Seq != 0 {
		t.Fatalf("first buffered event=%d", evt.Seq)
	}
}
