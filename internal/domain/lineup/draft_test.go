package lineup

import (
	"errors"
	"testing"

	"github.com/riskibarqy/lineup-builder/internal/domain/formation"
)

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	engine := newTestEngine(t, roster(14))
	fill433(t, engine)
	_ = engine.AddToBench("p13")
	_ = engine.AddToBench("p12")
	_ = engine.SetCaptain("p04")

	draft := engine.Snapshot()
	if len(draft.Starting) != 11 || len(draft.Bench) != 2 || draft.CaptainID != "p04" {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	restored, err := Restore(draft, formation.DefaultCatalog())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Session() != testSession() {
		t.Fatalf("session not restored: %+v", restored.Session())
	}

	want := engine.BuildSubmission()
	got := restored.BuildSubmission()
	if len(got.Players) != len(want.Players) {
		t.Fatalf("expected %d entries, got %d", len(want.Players), len(got.Players))
	}
	for i := range want.Players {
		if got.Players[i] != want.Players[i] {
			t.Fatalf("entry %d differs: got %+v want %+v", i, got.Players[i], want.Players[i])
		}
	}
	assertInvariants(t, restored)
}

func TestRestore_RejectsBrokenDrafts(t *testing.T) {
	base := func() Draft {
		engine := newTestEngine(t, roster(14))
		fill433(t, engine)
		_ = engine.AddToBench("p12")
		return engine.Snapshot()
	}

	tests := []struct {
		name   string
		mutate func(d *Draft)
		want   error
	}{
		{
			name:   "unknown formation",
			mutate: func(d *Draft) { d.FormationID = "1-1-1" },
			want:   ErrConfig,
		},
		{
			name:   "slot outside formation",
			mutate: func(d *Draft) { d.Starting["CAM"] = "p13" },
			want:   ErrConfig,
		},
		{
			name:   "player in two slots",
			mutate: func(d *Draft) { d.Starting["RW"] = d.Starting["GK"] },
			want:   ErrInvalidSelection,
		},
		{
			name:   "starter also on bench",
			mutate: func(d *Draft) { d.Bench = append(d.Bench, d.Starting["ST"]) },
			want:   ErrInvalidSelection,
		},
		{
			name:   "captain on bench",
			mutate: func(d *Draft) { d.CaptainID = "p12" },
			want:   ErrInvalidSelection,
		},
		{
			name:   "unknown player",
			mutate: func(d *Draft) { d.Bench = append(d.Bench, "ghost") },
			want:   ErrNotFound,
		},
		{
			name: "selections without formation",
			mutate: func(d *Draft) {
				d.FormationID = ""
			},
			want: ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := base()
			tt.mutate(&draft)
			if _, err := Restore(draft, formation.DefaultCatalog()); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
