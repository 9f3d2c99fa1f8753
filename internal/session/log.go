package session

import (
	"context"
	"log/slog"
)

// Log is the error log of one session, bound for the duration of a request.
type Log struct {
	id    string
	store Store
}

func NewLog(id string, store Store) *Log {
	return &Log{id: id, store: store}
}

func (l *Log) SessionID() string { return l.id }

// Append records entry. A store failure is logged and otherwise ignored so
// the request that produced the entry still completes.
func (l *Log) Append(ctx context.Context, entry string) {
	if err := l.store.Append(ctx, l.id, entry); err != nil {
		slog.Error("failed to record session error", "session_id", l.id, "error", err)
	}
}

func (l *Log) Entries(ctx context.Context) ([]string, error) {
	return l.store.Entries(ctx, l.id)
}

// End discards the log; the session is over.
func (l *Log) End(ctx context.Context) error {
	return l.store.Clear(ctx, l.id)
}
