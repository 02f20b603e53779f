package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "formation_id").
		From("lineup_submissions").
		Where(Eq("match_id", "m-1"), Eq("team_id", "t-home")).
		OrderBy("submitted_at DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, formation_id FROM lineup_submissions WHERE match_id = $1 AND team_id = $2 ORDER BY submitted_at DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "m-1" || args[1] != "t-home" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EqLiteralEscapesQuotes(t *testing.T) {
	query, args, err := Select("id").From("lineup_submissions").Where(EqLiteral("match_id", "m'1")).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM lineup_submissions WHERE match_id = 'm''1'" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("lineup_submissions").
		Columns("id", "match_id").
		Values("ls-1", "m-1").
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO lineup_submissions (id, match_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "ls-1" || args[1] != "m-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_ValueCountMismatch(t *testing.T) {
	if _, _, err := InsertInto("lineup_submissions").Columns("id", "match_id").Values("ls-1").ToSQL(); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID          string    `db:"id"`
		SubmittedAt time.Time `db:"submitted_at"`
		Ignored     string    `db:"-"`
		internal    string
	}

	query, args, err := InsertModel("lineup_submissions", row{ID: "ls-1", internal: "x"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO lineup_submissions (id, submitted_at) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
	if _, _, err := InsertModel("lineup_submissions", (*row)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
