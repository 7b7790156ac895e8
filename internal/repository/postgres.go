package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to Postgres and makes sure the schema exists. New columns are
// added with ADD COLUMN IF NOT EXISTS so old rows keep working after upgrades.
func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS subscribers (
            user_id BIGINT PRIMARY KEY,
            username TEXT,
            start_date TIMESTAMPTZ,
            end_date TIMESTAMPTZ,
            plan TEXT,
            status TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS predictions_history (
            id BIGSERIAL PRIMARY KEY,
            fixture_id BIGINT,
            championship TEXT,
            team_a TEXT,
            team_b TEXT,
            match_time TEXT,
            analysis TEXT,
            prediction TEXT,
            confidence DOUBLE PRECISION,
            suggested_odd DOUBLE PRECISION,
            sent_date TIMESTAMPTZ
        )`,
		`ALTER TABLE predictions_history ADD COLUMN IF NOT EXISTS market TEXT DEFAULT 'N/A'`,
		`ALTER TABLE predictions_history ADD COLUMN IF NOT EXISTS result TEXT DEFAULT 'pending'`,
		`CREATE TABLE IF NOT EXISTS bot_settings (
            key TEXT PRIMARY KEY,
            value TEXT
        )`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// PostgresSubscriberRepository stores subscribers in Postgres.
type PostgresSubscriberRepository struct {
	db *sql.DB
}

func NewPostgresSubscriberRepository(db *sql.DB) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

const subscriberColumns = `user_id, username, start_date, end_date, plan, status`

func scanSubscriber(row interface{ Scan(...any) error }) (*model.Subscriber, error) {
	var s model.Subscriber
	if err := row.Scan(&s.UserID, &s.Username, &s.StartDate, &s.EndDate, &s.Plan, &s.Status); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSubscriberRepository) Get(ctx context.Context, userID int64) (*model.Subscriber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE user_id=$1`, userID)
	s, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *PostgresSubscriberRepository) Upsert(ctx context.Context, s *model.Subscriber) error {
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("subscriber %d: end date before start date", s.UserID)
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO subscribers (user_id, username, start_date, end_date, plan, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (user_id) DO UPDATE SET
            username=EXCLUDED.username,
            start_date=EXCLUDED.start_date,
            end_date=EXCLUDED.end_date,
            plan=EXCLUDED.plan,
            status=EXCLUDED.status
    `, s.UserID, s.Username, s.StartDate, s.EndDate, s.Plan, s.Status)
	return err
}

func (r *PostgresSubscriberRepository) UpdateStatus(ctx context.Context, userID int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscribers SET status=$2 WHERE user_id=$1`, userID, status)
	return err
}

func (r *PostgresSubscriberRepository) list(ctx context.Context, query string, args ...any) ([]*model.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *PostgresSubscriberRepository) List(ctx context.Context) ([]*model.Subscriber, error) {
	return r.list(ctx, `SELECT `+subscriberColumns+` FROM subscribers`)
}

func (r *PostgresSubscriberRepository) ListActive(ctx context.Context) ([]*model.Subscriber, error) {
	return r.list(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE status=$1`, model.StatusActive)
}

func (r *PostgresSubscriberRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE status=$1`, model.StatusActive).Scan(&n)
	return n, err
}

// PostgresPredictionRepository stores the tip history in Postgres.
type PostgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) *PostgresPredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `id, fixture_id, championship, team_a, team_b, match_time,
    analysis, prediction, confidence, suggested_odd, market, result, sent_date`

func scanPrediction(row interface{ Scan(...any) error }) (*model.PredictionRecord, error) {
	var p model.PredictionRecord
	if err := row.Scan(&p.ID, &p.FixtureID, &p.Championship, &p.TeamA, &p.TeamB,
		&p.MatchTime, &p.Analysis, &p.Prediction, &p.Confidence, &p.SuggestedOdd,
		&p.Market, &p.Result, &p.SentDate); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPredictionRepository) Add(ctx context.Context, p *model.PredictionRecord) error {
	if p.Result == "" {
		p.Result = model.ResultPending
	}
	return r.db.QueryRowContext(ctx, `
        INSERT INTO predictions_history
            (fixture_id, championship, team_a, team_b, match_time, analysis,
             prediction, confidence, suggested_odd, market, result, sent_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id
    `, p.FixtureID, p.Championship, p.TeamA, p.TeamB, p.MatchTime, p.Analysis,
		p.Prediction, p.Confidence, p.SuggestedOdd, p.Market, p.Result, p.SentDate).
		Scan(&p.ID)
}

func (r *PostgresPredictionRepository) list(ctx context.Context, query string, args ...any) ([]*model.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []*model.PredictionRecord
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PostgresPredictionRepository) ListPending(ctx context.Context) ([]*model.PredictionRecord, error) {
	return r.list(ctx,
		`SELECT `+predictionColumns+` FROM predictions_history WHERE result=$1 ORDER BY id`,
		model.ResultPending)
}

// SetResult only touches rows still pending, so a record can never be
// re-resolved by a later job run.
func (r *PostgresPredictionRepository) SetResult(ctx context.Context, id int64, result string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE predictions_history SET result=$2 WHERE id=$1 AND result=$3`,
		id, result, model.ResultPending)
	return err
}

func (r *PostgresPredictionRepository) ListSentOn(ctx context.Context, day time.Time) ([]*model.PredictionRecord, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.list(ctx,
		`SELECT `+predictionColumns+` FROM predictions_history
         WHERE sent_date >= $1 AND sent_date < $2 ORDER BY id`,
		start, start.AddDate(0, 0, 1))
}

func (r *PostgresPredictionRepository) Stats(ctx context.Context) (model.PredictionStats, error) {
	var s model.PredictionStats
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE result=$1),
               COUNT(*) FILTER (WHERE result=$2),
               COUNT(*) FILTER (WHERE result=$3)
        FROM predictions_history
    `, model.ResultGreen, model.ResultRed, model.ResultPending).
		Scan(&s.Total, &s.Greens, &s.Reds, &s.Pending)
	return s, err
}

// PostgresSettingsRepository stores bot settings in Postgres.
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM bot_settings WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (r *PostgresSettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO bot_settings (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value
    `, key, value)
	return err
}
