package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"morningbrief/internal/core"
)

// Dialect names the SQL backend of a SQLStore
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const settingsID = 1

var briefingColumns = []string{
	"id", "title", "content", "summary", "report_date", "model_id",
	"input_tokens", "output_tokens", "sections", "created_at",
}

// SQLStore implements Store over database/sql for Postgres and SQLite
type SQLStore struct {
	db       *sql.DB
	dialect  Dialect
	builder  sq.StatementBuilderType
	defaults Defaults
	now      func() time.Time
}

var _ Store = (*SQLStore)(nil)

// NewPostgresStore opens a Postgres connection pool
func NewPostgresStore(ctx context.Context, connectionString string, defaults Defaults) (*SQLStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return newSQLStore(ctx, db, DialectPostgres, defaults)
}

// NewSQLiteStore opens a SQLite database file
func NewSQLiteStore(ctx context.Context, path string, defaults Defaults) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, DialectSQLite, defaults)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, defaults Defaults) (*SQLStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLStore{
		db:       db,
		dialect:  dialect,
		builder:  statementBuilder(dialect),
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// statementBuilder picks the placeholder style of the dialect: $n for
// Postgres, ? for SQLite.
func statementBuilder(dialect Dialect) sq.StatementBuilderType {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		placeholder = sq.Dollar
	}
	return sq.StatementBuilder.PlaceholderFormat(placeholder)
}

// DB exposes the connection pool for migrations
func (s *SQLStore) DB() *sql.DB { return s.db }

// Dialect returns the SQL backend
func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *SQLStore) GetSettings(ctx context.Context) (*core.Settings, error) {
	return s.getSettings(ctx, s.db)
}

func (s *SQLStore) getSettings(ctx context.Context, q queryer) (*core.Settings, error) {
	query, args, err := s.builder.
		Select("production_cost", "logistics_cost", "tax_rate", "is_configured", "updated_at").
		From("settings").
		Where(sq.Eq{"id": settingsID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build settings query: %w", err)
	}

	var settings core.Settings
	var production sql.NullFloat64
	err = q.QueryRowContext(ctx, query, args...).Scan(
		&production, &settings.LogisticsCost, &settings.TaxRate, &settings.IsConfigured, &settings.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.Settings{LogisticsCost: s.defaults.LogisticsCost, TaxRate: s.defaults.TaxRate}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if production.Valid {
		settings.ProductionCost = &production.Float64
	}
	return &settings, nil
}

func (s *SQLStore) SaveSettings(ctx context.Context, update core.SettingsUpdate) (*core.Settings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.getSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	merged := mergeSettings(current, update, s.now())

	var production interface{}
	if merged.ProductionCost != nil {
		production = *merged.ProductionCost
	}
	query, args, err := s.builder.
		Insert("settings").
		Columns("id", "production_cost", "logistics_cost", "tax_rate", "is_configured", "updated_at").
		Values(settingsID, production, merged.LogisticsCost, merged.TaxRate, merged.IsConfigured, merged.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			production_cost = excluded.production_cost,
			logistics_cost = excluded.logistics_cost,
			tax_rate = excluded.tax_rate,
			is_configured = excluded.is_configured,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build settings upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settings: %w", err)
	}
	return merged, nil
}

// mergeSettings applies the non-nil fields of update. A production cost
// marks the settings as configured.
func mergeSettings(current *core.Settings, update core.SettingsUpdate, now time.Time) *core.Settings {
	merged := *current
	if update.ProductionCost != nil {
		v := *update.ProductionCost
		merged.ProductionCost = &v
	}
	if update.LogisticsCost != nil {
		merged.LogisticsCost = *update.LogisticsCost
	}
	if update.TaxRate != nil {
		merged.TaxRate = *update.TaxRate
	}
	merged.IsConfigured = merged.ProductionCost != nil
	merged.UpdatedAt = now
	return &merged
}

func (s *SQLStore) HasBriefingOn(ctx context.Context, date core.Date) (bool, error) {
	query, args, err := s.builder.
		Select("COUNT(*)").
		From("briefings").
		Where(sq.Eq{"report_date": date.String()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check briefing for %s: %w", date, err)
	}
	return count > 0, nil
}

func (s *SQLStore) GetLatestBriefing(ctx context.Context) (*core.Briefing, error) {
	briefings, err := s.GetBriefingHistory(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(briefings) == 0 {
		return nil, ErrNotFound
	}
	return &briefings[0], nil
}

func (s *SQLStore) GetBriefingHistory(ctx context.Context, limit int) ([]core.Briefing, error) {
	builder := s.builder.
		Select(briefingColumns...).
		From("briefings").
		OrderBy("report_date DESC", "created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list briefings: %w", err)
	}
	defer rows.Close()

	var briefings []core.Briefing
	for rows.Next() {
		b, err := scanBriefing(rows)
		if err != nil {
			return nil, err
		}
		briefings = append(briefings, *b)
	}
	return briefings, rows.Err()
}

func (s *SQLStore) GetBriefingByID(ctx context.Context, id string) (*core.Briefing, error) {
	query, args, err := s.builder.
		Select(briefingColumns...).
		From("briefings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	b, err := scanBriefing(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *SQLStore) SaveBriefing(ctx context.Context, b *core.Briefing) error {
	sections, err := json.Marshal(b.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	query, args, err := s.builder.
		Insert("briefings").
		Columns(briefingColumns...).
		Values(b.ID, b.Title, b.Content, b.Summary, b.ReportDate.String(), b.ModelID,
			nullableInt(b.InputTokens), nullableInt(b.OutputTokens), string(sections), createdAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrBriefingExists
		}
		return fmt.Errorf("failed to save briefing: %w", err)
	}
	b.CreatedAt = createdAt
	return nil
}

func (s *SQLStore) DeleteAllBriefings(ctx context.Context) (int, error) {
	return s.deleteBriefings(ctx, nil)
}

func (s *SQLStore) DeleteBriefingsSince(ctx context.Context, date core.Date) (int, error) {
	return s.deleteBriefings(ctx, sq.GtOrEq{"report_date": date.String()})
}

func (s *SQLStore) deleteBriefings(ctx context.Context, where sq.Sqlizer) (int, error) {
	builder := s.builder.Delete("briefings")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete briefings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBriefing(row scanner) (*core.Briefing, error) {
	var b core.Briefing
	var input, output sql.NullInt64
	var sections string

	err := row.Scan(
		&b.ID, &b.Title, &b.Content, &b.Summary, &b.ReportDate, &b.ModelID,
		&input, &output, &sections, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if input.Valid {
		v := int(input.Int64)
		b.InputTokens = &v
	}
	if output.Valid {
		v := int(output.Int64)
		b.OutputTokens = &v
	}
	if sections != "" {
		if err := json.Unmarshal([]byte(sections), &b.Sections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}
	}
	return &b, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
