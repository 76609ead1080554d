package storage

import (
	"context"

	"sasfit/internal/model"
)

// Store defines persistence operations for fit sessions and their
// derived artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveSession(ctx context.Context, session model.SessionRecord) error
	GetSession(ctx context.Context, id string) (model.SessionRecord, bool, error)
	ListSessions(ctx context.Context) ([]string, error)
	SaveTheory(ctx context.Context, theory model.TheoryRecord) error
	GetTheory(ctx context.Context, sessionID string) (model.TheoryRecord, bool, error)
	SaveNLLFHistory(ctx context.Context, sessionID string, history []float64) error
	GetNLLFHistory(ctx context.Context, sessionID string) ([]float64, bool, error)
}
