package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/teerapatch/linklytics/pkg/core/domain"
	"github.com/teerapatch/linklytics/pkg/ports"
)

// PoolOptions bound the shared connection pool. Idle connections are
// reclaimed after MaxIdleTime; ConnectTimeout bounds the startup ping so a
// store outage fails fast instead of hanging.
type PoolOptions struct {
	MaxOpenConns   int
	MaxIdleConns   int
	MaxIdleTime    time.Duration
	ConnectTimeout time.Duration
}

func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:   10,
		MaxIdleConns:   5,
		MaxIdleTime:    5 * time.Minute,
		ConnectTimeout: 5 * time.Second,
	}
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string, opts PoolOptions) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	if driverName == "sqlite" && !strings.Contains(dbURL, "_pragma") {
		// FK enforcement is per-connection in SQLite, so it has to travel in
		// the DSN to cover every pooled connection. busy_timeout makes
		// concurrent writers queue instead of failing.
		sep := "?"
		if strings.Contains(dbURL, "?") {
			sep = "&"
		}
		dbURL += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxIdleTime(opts.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	// WAL is a database-level setting, one Exec is enough.
	_, _ = db.Exec(`PRAGMA journal_mode = WAL`)

	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		short_code TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		click_count INTEGER NOT NULL DEFAULT 0,
		is_custom_alias INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);
	CREATE INDEX IF NOT EXISTS idx_links_owner_id ON links(owner_id);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id INTEGER NOT NULL,
		device_type TEXT NOT NULL DEFAULT 'unknown',
		browser TEXT,
		referer TEXT,
		clicked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(link_id) REFERENCES links(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
	`
	_, err := db.Exec(query)
	return err
}

// isUniqueViolation maps driver errors to the uniqueness conflict.
// Driver-specific error types vary between modernc and libsql, so detect by
// message like both drivers' users do.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (short_code, original_url, owner_id, click_count, is_custom_alias, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	// click_count is written through so migrated links keep their counters;
	// fresh links carry zero.
	res, err := r.db.ExecContext(ctx, query,
		link.ShortCode, link.OriginalURL, link.OwnerID, link.ClickCount, link.IsCustomAlias, link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT id, short_code, original_url, owner_id, click_count, is_custom_alias, created_at
			  FROM links WHERE short_code = ?`

	var link domain.Link
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&link.ID, &link.ShortCode, &link.OriginalURL, &link.OwnerID,
		&link.ClickCount, &link.IsCustomAlias, &link.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Link, error) {
	query := `SELECT id, short_code, original_url, owner_id, click_count, is_custom_alias, created_at
			  FROM links WHERE owner_id = ?
			  ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.ShortCode, &l.OriginalURL, &l.OwnerID,
			&l.ClickCount, &l.IsCustomAlias, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	// ON DELETE CASCADE drops the link's clicks with it.
	_, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	query := `SELECT id, short_code, original_url, owner_id, click_count, is_custom_alias, created_at FROM links`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.ID, &l.ShortCode, &l.OriginalURL, &l.OwnerID,
			&l.ClickCount, &l.IsCustomAlias, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// nullable turns "" into NULL so rollup queries can COALESCE absent values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *SQLiteRepository) RecordClick(ctx context.Context, click *domain.Click) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}

	// 1. Insert the click event
	queryClick := `INSERT INTO clicks (link_id, device_type, browser, referer, clicked_at)
				   VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, queryClick,
		click.LinkID, click.DeviceType, nullable(click.Browser), nullable(click.Referer),
		click.ClickedAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		click.ID = id
	}

	// 2. Increment the link's counter. The relative update happens entirely
	// in the store, so N concurrent recordings always add exactly N.
	queryCount := `UPDATE links SET click_count = click_count + 1 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, queryCount, click.LinkID); err != nil {
		return err
	}

	// Both writes commit or roll back together: no click event without its
	// counter increment, and vice versa.
	return tx.Commit()
}

// refererBucket groups a referer by its host: NULL/empty is "direct", an
// http(s) referer is stripped to the host, anything malformed stays as its
// own raw bucket (matching how the upstream data looked before cleaning).
const refererBucket = `
	CASE
		WHEN referer IS NULL OR referer = '' THEN 'direct'
		WHEN substr(referer, 1, 7) <> 'http://' AND substr(referer, 1, 8) <> 'https://' THEN referer
		WHEN instr(substr(referer, instr(referer, '://') + 3), '/') = 0
			THEN substr(referer, instr(referer, '://') + 3)
		ELSE substr(referer, instr(referer, '://') + 3,
			instr(substr(referer, instr(referer, '://') + 3), '/') - 1)
	END`

func (r *SQLiteRepository) GetLinkStats(ctx context.Context, linkID int64) (*domain.LinkAnalytics, error) {
	stats := &domain.LinkAnalytics{
		LinkID:    linkID,
		Timeline:  []domain.TimelinePoint{},
		Devices:   []domain.StatCount{},
		Browsers:  []domain.StatCount{},
		Referrers: []domain.StatCount{},
	}

	// Ground truth for the total is the event count, not the denormalized
	// counter on the link row.
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clicks WHERE link_id = ?`, linkID).Scan(&stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	// Timeline: one point per calendar date, ascending
	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', clicked_at) AS date, COUNT(*)
		FROM clicks
		WHERE link_id = ?
		GROUP BY date
		ORDER BY date ASC`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.TimelinePoint
		if err := rows.Scan(&p.Date, &p.Clicks); err != nil {
			return nil, err
		}
		stats.Timeline = append(stats.Timeline, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Devices, err = r.countBy(ctx, `COALESCE(device_type, 'unknown')`, linkID)
	if err != nil {
		return nil, err
	}

	stats.Browsers, err = r.countBy(ctx, `COALESCE(browser, 'unknown')`, linkID)
	if err != nil {
		return nil, err
	}

	stats.Referrers, err = r.countBy(ctx, refererBucket, linkID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// countBy runs a categorical rollup over one link's clicks, descending by
// count. expr must be a SQL expression over the clicks columns.
func (r *SQLiteRepository) countBy(ctx context.Context, expr string, linkID int64) ([]domain.StatCount, error) {
	query := `SELECT name, COUNT(*) AS c FROM
				(SELECT ` + expr + ` AS name FROM clicks WHERE link_id = ?)
			  GROUP BY name
			  ORDER BY c DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []domain.StatCount{}
	for rows.Next() {
		var b domain.StatCount
		if err := rows.Scan(&b.Name, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ensure interface compliance
var _ ports.LinkRepository = (*SQLiteRepository)(nil)
