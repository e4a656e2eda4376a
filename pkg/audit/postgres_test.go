package audit

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

// pgxMockAdapter satisfies database.DB over a pgxmock pool, bridging
// pgxmock.PgxPoolIface to a narrower hand-written DB interface.
type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close()                      { a.mock.Close() }
func (a *pgxMockAdapter) Ping(ctx context.Context) error { return a.mock.Ping(ctx) }

func TestPostgresLoggerLogInsertsRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	entry := NewEntry().
		Service("router").
		Method("Solve").
		Action(ActionSolve).
		Outcome(OutcomeSuccess).
		Resource("route", "WETH.eth->USDC.arb").
		Duration(2 * time.Millisecond).
		Meta("algorithm", "psb").
		Build()

	mock.ExpectExec("INSERT INTO route_audits").
		WithArgs(
			entry.ID, entry.Timestamp, entry.Service, entry.Method, entry.Action, entry.Outcome,
			entry.RequestID, entry.Resource, entry.ResourceID, entry.DurationMs,
			entry.ErrorCode, entry.ErrorMessage, pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	logger := NewPostgresLogger(&pgxMockAdapter{mock: mock})
	require.NoError(t, logger.Log(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoggerCloseIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	require.NoError(t, NewPostgresLogger(&pgxMockAdapter{mock: mock}).Close())
}
