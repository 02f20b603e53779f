package lineup

import (
	"context"
	"errors"
	"time"
)

// ErrSessionBusy is returned when another process holds a session's lock for
// longer than a caller is willing to wait.
var ErrSessionBusy = errors.New("lineup session is busy")

// SessionRecord is a persisted builder session.
type SessionRecord struct {
	ID        string
	Draft     Draft
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionRepository stores in-progress builder sessions.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (SessionRecord, bool, error)
	Save(ctx context.Context, record SessionRecord) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionLocker is implemented by session stores shared between processes.
// The returned unlock must be called exactly once.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
}

// SubmissionRepository keeps the audit log of accepted submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, record SubmissionRecord) error
	ListByMatch(ctx context.Context, matchID string) ([]SubmissionRecord, error)
}

// SubmitResult is the tournament backend's answer to a submission.
type SubmitResult struct {
	Success bool
	Message string
}

// Submitter delivers a submission to the tournament backend.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) (SubmitResult, error)
}
