package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dojohub/internal/logging"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock, so every repository
// can run either on the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts transactions. *pgxpool.Pool implements it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// TxRepos are the repositories bound to a single transaction.
type TxRepos struct {
	Academies   AcademyRepository
	Branding    BrandingRepository
	Users       UserRepository
	Plans       PlanRepository
	Memberships MembershipRepository
	Payments    PaymentRepository
	AuditLogs   AuditLogsRepository
}

func newTxRepos(db DBTX) *TxRepos {
	return &TxRepos{
		Academies:   NewAcademyRepository(db),
		Branding:    NewBrandingRepository(db),
		Users:       NewUserRepository(db),
		Plans:       NewPlanRepository(db),
		Memberships: NewMembershipRepository(db),
		Payments:    NewPaymentRepository(db),
		AuditLogs:   NewAuditLogsRepository(db),
	}
}

// TxManager runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r *TxRepos) error) error
}

type pgxTxManager struct {
	db Beginner
}

func NewTxManager(db Beginner) TxManager {
	return &pgxTxManager{db: db}
}

func (m *pgxTxManager) WithinTx(ctx context.Context, fn func(r *TxRepos) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logging.Ctx(ctx).Warn().Err(rbErr).Msg("transaction rollback failed")
		}
	}()

	if err := fn(newTxRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// affected turns an Exec that touched no row into pgx.ErrNoRows.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// argList accumulates positional arguments for dynamic WHERE clauses.
type argList struct {
	args []any
}

func newArgList(initial ...any) *argList {
	return &argList{args: initial}
}

// add appends v and returns its placeholder.
func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}
