package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// summaryGuard keeps summaries monotonic under concurrent writers: an
// existing summary is only replaced when it is absent, or when a fallback
// gets upgraded to a real one. The incoming fallback flag is the parameter.
const summaryGuard = "(articles.summary IS NULL OR articles.summary = '' OR (articles.summary_fallback AND NOT %s))"

var recordColumns = []string{
	"id", "source_url", "title", "summary", "summary_fallback",
	"provider", "category", "thumbnail_url", "created_at", "updated_at",
}

// PostgresRepository persists article records keyed by source URL.
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FindByURLs resolves the given source URLs in one batch round trip.
func (r *PostgresRepository) FindByURLs(ctx context.Context, urls []string) ([]domain.Record, error) {
	if r.db == nil || len(urls) == 0 {
		return nil, nil
	}

	query, args, err := r.sb.
		Select(recordColumns...).
		From("articles").
		Where(sq.Expr("source_url = ANY(?)", pq.Array(urls))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

// Insert creates a record, or upgrades the existing one when another writer
// got there first. The source_url uniqueness constraint makes the write
// idempotent; the conflict clause applies the same summary guard as Update.
func (r *PostgresRepository) Insert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if r.db == nil {
		return rec, fmt.Errorf("repository has no database")
	}

	guard := fmt.Sprintf(summaryGuard, "EXCLUDED.summary_fallback")
	conflict := fmt.Sprintf(`ON CONFLICT (source_url) DO UPDATE SET
  title = EXCLUDED.title,
  summary = CASE WHEN %s AND EXCLUDED.summary <> '' THEN EXCLUDED.summary ELSE articles.summary END,
  summary_fallback = CASE WHEN %s AND EXCLUDED.summary <> '' THEN EXCLUDED.summary_fallback ELSE articles.summary_fallback END,
  thumbnail_url = CASE WHEN EXCLUDED.thumbnail_url <> '' THEN EXCLUDED.thumbnail_url ELSE articles.thumbnail_url END,
  updated_at = NOW()`, guard, guard)

	query, args, err := r.sb.
		Insert("articles").
		Columns("id", "source_url", "title", "summary", "summary_fallback", "provider", "category", "thumbnail_url").
		Values(rec.ID, rec.SourceURL, rec.Title, nullable(rec.Summary), rec.SummaryFallback, rec.Provider, string(rec.Category), rec.ThumbnailURL).
		Suffix(conflict + " RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.Record{}, fmt.Errorf("build insert: %w", err)
	}

	saved, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return saved, nil
}

// Update mutates the named fields of one record. Summary writes go through
// the monotonicity guard; titles are last-writer-wins.
func (r *PostgresRepository) Update(ctx context.Context, id string, fields domain.RecordUpdate) (domain.Record, error) {
	if r.db == nil {
		return domain.Record{}, fmt.Errorf("repository has no database")
	}

	builder := r.sb.Update("articles").Set("updated_at", sq.Expr("NOW()"))

	if fields.Title != nil {
		builder = builder.Set("title", *fields.Title)
	}

	if fields.Summary != nil && *fields.Summary != "" {
		fallback := fields.SummaryFallback != nil && *fields.SummaryFallback
		guard := fmt.Sprintf(summaryGuard, "?")
		builder = builder.
			Set("summary", sq.Expr("CASE WHEN "+guard+" THEN ? ELSE articles.summary END", fallback, *fields.Summary)).
			Set("summary_fallback", sq.Expr("CASE WHEN "+guard+" THEN ? ELSE articles.summary_fallback END", fallback, fallback))
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.Record{}, fmt.Errorf("build update: %w", err)
	}

	saved, err := scanRecord(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Record{}, fmt.Errorf("update record %s: %w", id, err)
	}
	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var (
		rec      domain.Record
		summary  sql.NullString
		category string
	)
	err := row.Scan(
		&rec.ID, &rec.SourceURL, &rec.Title, &summary, &rec.SummaryFallback,
		&rec.Provider, &category, &rec.ThumbnailURL, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return domain.Record{}, fmt.Errorf("scan record: %w", err)
	}
	rec.Summary = summary.String
	rec.Category = domain.Category(category)
	return rec, nil
}

func columnList() string {
	return strings.Join(recordColumns, ", ")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
