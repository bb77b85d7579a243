/*
Package sqlite provides a SQLite-backed implementation of benefit.DataService.

PURPOSE:
  Persists full dataset snapshots per mode. Save replaces the mode's rows
  inside one database transaction, which matches the caller's debounced
  last-write-wins policy: only the latest snapshot ever survives.

KEY TABLES:
  members, sources, benefits, redemptions, points_sources, redeemables:
    One row per entity, each carrying a mode column so the test and prod
    datasets stay isolated.
  settings:
    One row per mode.

ENCODING:
  Dates are YYYY-MM-DD text. Money and points are decimal text, never
  REAL - parsing back through shopspring/decimal keeps precision exact.
  Cycle anchors flatten into (cycle_period, cycle_month, cycle_day) with
  NULL period meaning "no anchor".

WAL MODE:
  SQLite is opened with WAL so the debounced writer never blocks readers.

USAGE:
  svc, err := sqlite.New("./data/benefits.db")
  if err != nil { log.Fatal(err) }
  defer svc.Close()
  ds, err := svc.Load(ctx, benefit.ModeProd)

SEE ALSO:
  - benefit/dataservice.go: Interface definition
  - benefit/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/homeperks/benefit-engine/benefit"
)

// Service implements benefit.DataService using SQLite.
type Service struct {
	db *sql.DB
}

// New creates a SQLite data service at the given path. Use ":memory:" for
// an in-memory database.
func New(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	svc := &Service{db: db}
	if err := svc.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return svc, nil
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (id, mode)
	);

	CREATE TABLE IF NOT EXISTS sources (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		member_id TEXT NOT NULL,
		name TEXT NOT NULL,
		cycle_period TEXT,
		cycle_month INTEGER,
		cycle_day INTEGER,
		memo TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (id, mode)
	);

	CREATE TABLE IF NOT EXISTS benefits (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		source_id TEXT NOT NULL,
		name TEXT NOT NULL,
		benefit_type TEXT NOT NULL,
		quota INTEGER NOT NULL DEFAULT 0,
		credit_amount TEXT,
		shared INTEGER NOT NULL DEFAULT 0,
		cycle_period TEXT,
		cycle_month INTEGER,
		cycle_day INTEGER,
		memo TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (id, mode)
	);

	CREATE INDEX IF NOT EXISTS idx_benefits_mode_source
		ON benefits(mode, source_id);

	CREATE TABLE IF NOT EXISTS redemptions (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		benefit_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		redeemed_at TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (id, mode)
	);

	-- Window queries filter by benefit and date (hot path)
	CREATE INDEX IF NOT EXISTS idx_redemptions_mode_benefit_date
		ON redemptions(mode, benefit_id, redeemed_at);

	CREATE TABLE IF NOT EXISTS points_sources (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		member_id TEXT NOT NULL,
		name TEXT NOT NULL,
		balance TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (id, mode)
	);

	CREATE TABLE IF NOT EXISTS redeemables (
		id TEXT NOT NULL,
		mode TEXT NOT NULL,
		points_source_id TEXT NOT NULL,
		name TEXT NOT NULL,
		cost TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (id, mode)
	);

	CREATE TABLE IF NOT EXISTS settings (
		mode TEXT PRIMARY KEY,
		timezone TEXT NOT NULL DEFAULT '',
		default_member_id TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD
// =============================================================================

func (s *Service) Load(ctx context.Context, mode benefit.Mode) (benefit.Dataset, error) {
	if !mode.Valid() {
		return benefit.Dataset{}, benefit.ErrInvalidMode
	}

	var ds benefit.Dataset
	var err error

	if ds.Members, err = s.loadMembers(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.Sources, err = s.loadSources(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.Benefits, err = s.loadBenefits(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.Redemptions, err = s.loadRedemptions(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.PointsSources, err = s.loadPointsSources(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.Redeemables, err = s.loadRedeemables(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	if ds.Settings, err = s.loadSettings(ctx, mode); err != nil {
		return benefit.Dataset{}, err
	}
	return ds, nil
}

func (s *Service) loadMembers(ctx context.Context, mode benefit.Mode) ([]benefit.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM members WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var out []benefit.Member
	for rows.Next() {
		var m benefit.Member
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Name, &createdAt); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = benefit.ParseDate(createdAt); err != nil {
			return nil, fmt.Errorf("member %s: bad created_at: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Service) loadSources(ctx context.Context, mode benefit.Mode) ([]benefit.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, member_id, name, cycle_period, cycle_month, cycle_day, memo, created_at
		 FROM sources WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	defer rows.Close()

	var out []benefit.Source
	for rows.Next() {
		var src benefit.Source
		var createdAt string
		var period sql.NullString
		var month, day sql.NullInt64
		if err := rows.Scan(&src.ID, &src.MemberID, &src.Name, &period, &month, &day, &src.Memo, &createdAt); err != nil {
			return nil, err
		}
		src.DefaultAnchor = anchorFromColumns(period, month, day)
		if src.CreatedAt, err = benefit.ParseDate(createdAt); err != nil {
			return nil, fmt.Errorf("source %s: bad created_at: %w", src.ID, err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *Service) loadBenefits(ctx context.Context, mode benefit.Mode) ([]benefit.Benefit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, name, benefit_type, quota, credit_amount, shared,
		        cycle_period, cycle_month, cycle_day, memo, created_at
		 FROM benefits WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load benefits: %w", err)
	}
	defer rows.Close()

	var out []benefit.Benefit
	for rows.Next() {
		var b benefit.Benefit
		var createdAt string
		var credit, period sql.NullString
		var shared int
		var month, day sql.NullInt64
		if err := rows.Scan(&b.ID, &b.SourceID, &b.Name, &b.Type, &b.Quota, &credit, &shared,
			&period, &month, &day, &b.Memo, &createdAt); err != nil {
			return nil, err
		}
		b.Shared = shared != 0
		b.CycleAnchor = anchorFromColumns(period, month, day)
		if credit.Valid {
			amount, err := decimal.NewFromString(credit.String)
			if err != nil {
				return nil, fmt.Errorf("benefit %s: bad credit_amount: %w", b.ID, err)
			}
			b.CreditAmount = &amount
		}
		if b.CreatedAt, err = benefit.ParseDate(createdAt); err != nil {
			return nil, fmt.Errorf("benefit %s: bad created_at: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Service) loadRedemptions(ctx context.Context, mode benefit.Mode) ([]benefit.Redemption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, benefit_id, member_id, redeemed_at, memo
		 FROM redemptions WHERE mode = ? ORDER BY redeemed_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load redemptions: %w", err)
	}
	defer rows.Close()

	var out []benefit.Redemption
	for rows.Next() {
		var r benefit.Redemption
		var redeemedAt string
		if err := rows.Scan(&r.ID, &r.BenefitID, &r.MemberID, &redeemedAt, &r.Memo); err != nil {
			return nil, err
		}
		if r.RedeemedAt, err = benefit.ParseDate(redeemedAt); err != nil {
			return nil, fmt.Errorf("redemption %s: bad redeemed_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Service) loadPointsSources(ctx context.Context, mode benefit.Mode) ([]benefit.PointsSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, member_id, name, balance, created_at
		 FROM points_sources WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load points sources: %w", err)
	}
	defer rows.Close()

	var out []benefit.PointsSource
	for rows.Next() {
		var ps benefit.PointsSource
		var balance, createdAt string
		if err := rows.Scan(&ps.ID, &ps.MemberID, &ps.Name, &balance, &createdAt); err != nil {
			return nil, err
		}
		if ps.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("points source %s: bad balance: %w", ps.ID, err)
		}
		if ps.CreatedAt, err = benefit.ParseDate(createdAt); err != nil {
			return nil, fmt.Errorf("points source %s: bad created_at: %w", ps.ID, err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (s *Service) loadRedeemables(ctx context.Context, mode benefit.Mode) ([]benefit.Redeemable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, points_source_id, name, cost, created_at
		 FROM redeemables WHERE mode = ? ORDER BY created_at, id`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load redeemables: %w", err)
	}
	defer rows.Close()

	var out []benefit.Redeemable
	for rows.Next() {
		var item benefit.Redeemable
		var cost, createdAt string
		if err := rows.Scan(&item.ID, &item.PointsSourceID, &item.Name, &cost, &createdAt); err != nil {
			return nil, err
		}
		if item.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("redeemable %s: bad cost: %w", item.ID, err)
		}
		if item.CreatedAt, err = benefit.ParseDate(createdAt); err != nil {
			return nil, fmt.Errorf("redeemable %s: bad created_at: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Service) loadSettings(ctx context.Context, mode benefit.Mode) (benefit.Settings, error) {
	var st benefit.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT timezone, default_member_id FROM settings WHERE mode = ?`, mode).
		Scan(&st.Timezone, &st.DefaultMemberID)
	if err == sql.ErrNoRows {
		return benefit.Settings{}, nil
	}
	if err != nil {
		return benefit.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return st, nil
}

// =============================================================================
// SAVE - Snapshot replacement within one transaction
// =============================================================================

func (s *Service) Save(ctx context.Context, mode benefit.Mode, ds benefit.Dataset) error {
	if !mode.Valid() {
		return benefit.ErrInvalidMode
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"members", "sources", "benefits", "redemptions",
		"points_sources", "redeemables", "settings",
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE mode = ?`, mode); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, m := range ds.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, mode, name, created_at) VALUES (?, ?, ?, ?)`,
			m.ID, mode, m.Name, m.CreatedAt.String()); err != nil {
			return fmt.Errorf("failed to save member %s: %w", m.ID, err)
		}
	}

	for _, src := range ds.Sources {
		period, month, day := anchorToColumns(src.DefaultAnchor)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (id, mode, member_id, name, cycle_period, cycle_month, cycle_day, memo, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			src.ID, mode, src.MemberID, src.Name, period, month, day, src.Memo, src.CreatedAt.String()); err != nil {
			return fmt.Errorf("failed to save source %s: %w", src.ID, err)
		}
	}

	for _, b := range ds.Benefits {
		period, month, day := anchorToColumns(b.CycleAnchor)
		var credit any
		if b.CreditAmount != nil {
			credit = b.CreditAmount.String()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO benefits (id, mode, source_id, name, benefit_type, quota, credit_amount,
			                       shared, cycle_period, cycle_month, cycle_day, memo, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, mode, b.SourceID, b.Name, b.Type, b.Quota, credit,
			boolToInt(b.Shared), period, month, day, b.Memo, b.CreatedAt.String()); err != nil {
			return fmt.Errorf("failed to save benefit %s: %w", b.ID, err)
		}
	}

	for _, r := range ds.Redemptions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO redemptions (id, mode, benefit_id, member_id, redeemed_at, memo)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, mode, r.BenefitID, r.MemberID, r.RedeemedAt.String(), r.Memo); err != nil {
			return fmt.Errorf("failed to save redemption %s: %w", r.ID, err)
		}
	}

	for _, ps := range ds.PointsSources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO points_sources (id, mode, member_id, name, balance, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ps.ID, mode, ps.MemberID, ps.Name, ps.Balance.String(), ps.CreatedAt.String()); err != nil {
			return fmt.Errorf("failed to save points source %s: %w", ps.ID, err)
		}
	}

	for _, item := range ds.Redeemables {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO redeemables (id, mode, points_source_id, name, cost, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, mode, item.PointsSourceID, item.Name, item.Cost.String(), item.CreatedAt.String()); err != nil {
			return fmt.Errorf("failed to save redeemable %s: %w", item.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (mode, timezone, default_member_id) VALUES (?, ?, ?)`,
		mode, ds.Settings.Timezone, ds.Settings.DefaultMemberID); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// =============================================================================
// COLUMN HELPERS
// =============================================================================

func anchorToColumns(a *benefit.CycleAnchor) (period, month, day any) {
	if a == nil {
		return nil, nil, nil
	}
	return string(a.Period), int(a.Month), a.Day
}

func anchorFromColumns(period sql.NullString, month, day sql.NullInt64) *benefit.CycleAnchor {
	if !period.Valid {
		return nil
	}
	return &benefit.CycleAnchor{
		Period: benefit.CyclePeriod(period.String),
		Month:  time.Month(month.Int64),
		Day:    int(day.Int64),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
