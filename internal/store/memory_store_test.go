package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

func TestProjectSnapshotsAreIsolated(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if _, err := st.LoadProject(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	p := model.Project{ID: "p1", VideoClips: []model.VideoClip{{ID: "c1"}}}
	if err := st.SaveProject(ctx, "u1", p); err != nil {
		t.Fatal(err)
	}
	p.VideoClips[0].ID = "mutated"

	got, err := st.LoadProject(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.VideoClips[0].ID != "c1" {
		t.Fatalf("stored snapshot shares memory with caller")
	}
	got.VideoClips[0].ID = "mutated again"
	again, _ := st.LoadProject(ctx, "u1")
	if again.VideoClips[0].ID != "c1" {
		t.Fatalf("loaded snapshot shares memory with store")
	}

	if err := st.DeleteProject(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadProject(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("project survived delete")
	}
}

func TestEventSequenceAndBacklog(t *testing.T) {
	st := NewMemoryStore()
	st.eventBacklog = 3
	for i := 0; i < 5; i++ {
		st.AppendEvent("u1", model.ProjectEvent{Type: model.EventVideoStatus})
	}
	other := st.AppendEvent("u2", model.ProjectEvent{Type: model.EventStateChanged})
	if other.Seq != 1 || other.EventID == "" || other.TS.IsZero() {
		t.Fatalf("per-user sequence not independent: %+v", other)
	}

	all := st.ListEventsFromSeq("u1", 0)
	if len(all) != 3 || all[0].Seq != 3 || all[2].Seq != 5 {
		t.Fatalf("backlog=%+v", all)
	}
	tail := st.ListEventsFromSeq("u1", 4)
	if len(tail) != 1 || tail[0].Seq != 5 {
		t.Fatalf("tail=%+v", tail)
	}
}
