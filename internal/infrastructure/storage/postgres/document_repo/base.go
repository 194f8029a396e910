// Package document_repo provides PostgreSQL implementations for
// document repositories.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"kardex/internal/core/apperror"
	"kardex/internal/core/entity"
	"kardex/internal/domain/documents"
	"kardex/internal/infrastructure/storage/postgres"
)

// docColumns are the header columns shared by every document table:
// id, version, created_at, updated_at, created_by, updated_by, number,
// date, comment. Derived from entity.Document so the list cannot drift
// from the struct.
var docColumns = postgres.ExtractDBColumns[entity.Document]()

// docCols returns a fresh column list of the shared header columns plus
// the table's own. Always copies, so per-table lists never share a
// backing array.
func docCols(extra ...string) []string {
	cols := make([]string, 0, len(docColumns)+len(extra))
	cols = append(cols, docColumns...)
	return append(cols, extra...)
}

// baseRepo carries the pieces every document repository needs.
type baseRepo struct {
	txManager *postgres.TxManager
	table     string
}

func (r *baseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *baseRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// applyCommonFilter adds the filter conditions shared by all document
// lists: number search, explicit ids and the business date range.
func (r *baseRepo) applyCommonFilter(q squirrel.SelectBuilder, f documents.ListFilter) squirrel.SelectBuilder {
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + f.Search + "%"})
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}
	return q
}

// count runs the filtered query as a COUNT(*) subselect.
func (r *baseRepo) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return total, nil
}

// applyPage adds ordering and pagination.
func (r *baseRepo) applyPage(q squirrel.SelectBuilder, f documents.ListFilter, extraCols ...string) (squirrel.SelectBuilder, error) {
	orderBy, err := parseOrderBy(f.OrderBy, extraCols)
	if err != nil {
		return q, err
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q, nil
}

// parseOrderBy converts "-date" style order keys into SQL. The field
// must be a known column; everything else is rejected so user input can
// never reach the ORDER BY clause raw.
func parseOrderBy(orderBy string, extraCols []string) (string, error) {
	if strings.TrimSpace(orderBy) == "" {
		return "date DESC, created_at DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}
	field = strings.TrimSpace(field)

	allowed := make(map[string]struct{}, len(docColumns)+len(extraCols))
	for _, col := range docColumns {
		allowed[col] = struct{}{}
	}
	for _, col := range extraCols {
		allowed[col] = struct{}{}
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy)
	}

	return field + " " + direction, nil
}
