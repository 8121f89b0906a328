package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/postgres"
	"github.com/flexprice/docforge/internal/sentry"
	sentrygo "github.com/getsentry/sentry-go"
)

const historyColumns = `id, user_id, document_type, document_number, customer_name, customer_email,
	total_amount, currency, renderer, archive_key, created_at`

type historyRepository struct {
	db     *postgres.DB
	sentry *sentry.Service
	logger *logger.Logger
}

func NewHistoryRepository(db *postgres.DB, sentry *sentry.Service, logger *logger.Logger) history.Repository {
	return &historyRepository{db: db, sentry: sentry, logger: logger}
}

func (r *historyRepository) startSpan(ctx context.Context, operation string, params map[string]interface{}) (*sentrygo.Span, context.Context) {
	if r.sentry == nil {
		return nil, ctx
	}
	return r.sentry.StartDBSpan(ctx, "history."+operation, params)
}

func (r *historyRepository) Create(ctx context.Context, record *history.Record) (err error) {
	if err := record.Validate(); err != nil {
		return err
	}
	span, ctx := r.startSpan(ctx, "create", map[string]interface{}{"record_id": record.ID})
	defer func() { sentry.FinishSpan(span, err) }()

	query := `
		INSERT INTO document_history (` + historyColumns + `)
		VALUES (
			:id, :user_id, :document_type, :document_number, :customer_name, :customer_email,
			:total_amount, :currency, :renderer, :archive_key, :created_at
		)`

	r.logger.Debugw("creating history record",
		"record_id", record.ID,
		"user_id", record.UserID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, record); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record export history").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *historyRepository) Get(ctx context.Context, userID, id string) (_ *history.Record, err error) {
	span, ctx := r.startSpan(ctx, "get", map[string]interface{}{"record_id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	q := r.db.GetQuerier(ctx)
	query := q.Rebind(`SELECT ` + historyColumns + ` FROM document_history WHERE id = ? AND user_id = ?`)

	var rec history.Record
	if err := q.GetContext(ctx, &rec, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("history record %s not found", id).
				WithHint("The history record does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load history record").
			Mark(ierr.ErrDatabase)
	}
	return &rec, nil
}

func (r *historyRepository) List(ctx context.Context, filter *history.Filter) (_ []*history.Record, err error) {
	if filter == nil {
		filter = &history.Filter{}
	}
	filter.Normalize()
	span, ctx := r.startSpan(ctx, "list", map[string]interface{}{"limit": filter.Limit, "offset": filter.Offset})
	defer func() { sentry.FinishSpan(span, err) }()

	q := r.db.GetQuerier(ctx)
	where, args := whereClause(filter)
	query := q.Rebind(`SELECT ` + historyColumns + ` FROM document_history` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, filter.Limit, filter.Offset)

	records := make([]*history.Record, 0)
	if err := q.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list history").
			Mark(ierr.ErrDatabase)
	}
	return records, nil
}

func (r *historyRepository) Count(ctx context.Context, filter *history.Filter) (_ int, err error) {
	if filter == nil {
		filter = &history.Filter{}
	}
	span, ctx := r.startSpan(ctx, "count", nil)
	defer func() { sentry.FinishSpan(span, err) }()
	q := r.db.GetQuerier(ctx)
	where, args := whereClause(filter)

	var n int
	if err := q.GetContext(ctx, &n, q.Rebind(`SELECT COUNT(*) FROM document_history`+where), args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count history").
			Mark(ierr.ErrDatabase)
	}
	return n, nil
}

func (r *historyRepository) Delete(ctx context.Context, userID, id string) (err error) {
	span, ctx := r.startSpan(ctx, "delete", map[string]interface{}{"record_id": id})
	defer func() { sentry.FinishSpan(span, err) }()

	q := r.db.GetQuerier(ctx)

	r.logger.Debugw("deleting history record",
		"record_id", id,
		"user_id", userID,
	)

	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM document_history WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete history record").
			Mark(ierr.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("history record %s not found", id).
			WithHint("The history record does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func whereClause(f *history.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.DocumentType != "" {
		conds = append(conds, "document_type = ?")
		args = append(args, string(f.DocumentType))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
