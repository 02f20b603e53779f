package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/lineup-builder/internal/domain/lineup"
	qb "github.com/riskibarqy/lineup-builder/internal/platform/querybuilder"
)

type SubmissionRepository struct {
	db *sqlx.DB
}

var _ lineup.SubmissionRepository = (*SubmissionRepository)(nil)

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, record lineup.SubmissionRecord) error {
	row, err := submissionToRow(record)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(submissionTable, row, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert submission query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) ListByMatch(ctx context.Context, matchID string) ([]lineup.SubmissionRecord, error) {
	query, args, err := submissionBaseSelectBuilder().
		Where(qb.Eq("match_id", matchID)).
		OrderBy("submitted_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list submissions query: %w", err)
	}

	var rows []submissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.listByMatchLiteral(ctx, matchID)
		}
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissionsFromRows(rows)
}

func (r *SubmissionRepository) listByMatchLiteral(ctx context.Context, matchID string) ([]lineup.SubmissionRecord, error) {
	query, args, err := submissionBaseSelectBuilder().
		Where(qb.EqLiteral("match_id", matchID)).
		OrderBy("submitted_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list submissions literal fallback query: %w", err)
	}

	var rows []submissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions literal fallback: %w", err)
	}
	return submissionsFromRows(rows)
}

func submissionBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(submissionColumns...).From(submissionTable)
}

func submissionToRow(record lineup.SubmissionRecord) (submissionTableModel, error) {
	entries := make([]submissionEntryModel, 0, len(record.Entries))
	for _, entry := range record.Entries {
		entries = append(entries, submissionEntryModel{
			PlayerID:  entry.PlayerID,
			Position:  entry.Position,
			Role:      string(entry.Role),
			IsCaptain: entry.IsCaptain,
		})
	}
	raw, err := sonic.Marshal(entries)
	if err != nil {
		return submissionTableModel{}, fmt.Errorf("encode submission entries: %w", err)
	}

	return submissionTableModel{
		ID:            record.ID,
		MatchID:       record.MatchID,
		TeamID:        record.TeamID,
		FormationID:   record.FormationID,
		Entries:       string(raw),
		RequestedBy:   record.RequestedBy,
		RemoteMessage: record.RemoteMessage,
		SubmittedAt:   record.SubmittedAt.UTC(),
	}, nil
}

func submissionsFromRows(rows []submissionTableModel) ([]lineup.SubmissionRecord, error) {
	out := make([]lineup.SubmissionRecord, 0, len(rows))
	for _, row := range rows {
		item, err := submissionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func submissionFromRow(row submissionTableModel) (lineup.SubmissionRecord, error) {
	var entries []submissionEntryModel
	if len(row.Entries) > 0 {
		if err := sonic.UnmarshalString(row.Entries, &entries); err != nil {
			return lineup.SubmissionRecord{}, fmt.Errorf("decode entries of submission %s: %w", row.ID, err)
		}
	}

	out := lineup.SubmissionRecord{
		ID:            row.ID,
		MatchID:       row.MatchID,
		TeamID:        row.TeamID,
		FormationID:   row.FormationID,
		Entries:       make([]lineup.SubmissionEntry, 0, len(entries)),
		RequestedBy:   row.RequestedBy,
		RemoteMessage: row.RemoteMessage,
		SubmittedAt:   row.SubmittedAt,
	}
	for _, entry := range entries {
		out.Entries = append(out.Entries, lineup.SubmissionEntry{
			PlayerID:  entry.PlayerID,
			Position:  entry.Position,
			Role:      lineup.Role(entry.Role),
			IsCaptain: entry.IsCaptain,
		})
	}
	return out, nil
}
