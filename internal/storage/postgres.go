package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresLedger records ingested articles in Postgres. With Supabase
// this is the same database that holds the vector table.
type PostgresLedger struct {
	db       *sql.DB
	ttlHours int
}

// NewPostgresLedger opens the connection and prepares the schema.
func NewPostgresLedger(dsn string, ttlHours int) (*PostgresLedger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := &PostgresLedger{
		db:       db,
		ttlHours: ttlHours,
	}

	if err := ledger.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Println("Postgres ledger connected")
	return ledger, nil
}

func (pl *PostgresLedger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingested_articles (
		id SERIAL PRIMARY KEY,
		hash VARCHAR(64) UNIQUE NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		bias VARCHAR(20),
		source VARCHAR(100),
		ingested_at TIMESTAMP NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_ingested_articles_hash ON ingested_articles(hash);
	CREATE INDEX IF NOT EXISTS idx_ingested_articles_ingested_at ON ingested_articles(ingested_at);
	CREATE INDEX IF NOT EXISTS idx_ingested_articles_link ON ingested_articles(link);
	`

	_, err := pl.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// IsIngested checks if an article hash is in the TTL window.
func (pl *PostgresLedger) IsIngested(hash string) bool {
	cutoffTime := time.Now().Add(-time.Duration(pl.ttlHours) * time.Hour)

	var count int
	query := `SELECT COUNT(*) FROM ingested_articles WHERE hash = $1 AND ingested_at > $2`
	err := pl.db.QueryRow(query, hash, cutoffTime).Scan(&count)

	if err != nil {
		log.Printf("Error checking duplicate: %v", err)
		return false
	}

	return count > 0
}

// IsLinkIngested checks if a specific link was already ingested.
func (pl *PostgresLedger) IsLinkIngested(link string) bool {
	cutoffTime := time.Now().Add(-time.Duration(pl.ttlHours) * time.Hour)

	var count int
	query := `SELECT COUNT(*) FROM ingested_articles WHERE link = $1 AND ingested_at > $2`
	err := pl.db.QueryRow(query, link, cutoffTime).Scan(&count)

	if err != nil {
		log.Printf("Error checking link duplicate: %v", err)
		return false
	}

	return count > 0
}

// MarkIngested records the article; conflicts refresh the timestamp.
func (pl *PostgresLedger) MarkIngested(hash, title, link, bias, source string) error {
	query := `
		INSERT INTO ingested_articles (hash, title, link, bias, source, ingested_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (hash) DO UPDATE SET ingested_at = NOW()
	`

	_, err := pl.db.Exec(query, hash, title, link, bias, source)
	if err != nil {
		return fmt.Errorf("failed to mark as ingested: %w", err)
	}

	return nil
}

// Cleanup removes expired records.
func (pl *PostgresLedger) Cleanup() error {
	cutoffTime := time.Now().Add(-time.Duration(pl.ttlHours) * time.Hour)

	result, err := pl.db.Exec(`DELETE FROM ingested_articles WHERE ingested_at < $1`, cutoffTime)
	if err != nil {
		return fmt.Errorf("failed to cleanup: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		log.Printf("Cleaned up %d old ledger records", rows)
	}

	return nil
}

// GetStats returns ledger statistics.
func (pl *PostgresLedger) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	var total int
	err := pl.db.QueryRow(`SELECT COUNT(*) FROM ingested_articles`).Scan(&total)
	if err != nil {
		return nil, err
	}
	stats["total_items"] = total

	cutoffTime := time.Now().Add(-time.Duration(pl.ttlHours) * time.Hour)
	var active int
	err = pl.db.QueryRow(`SELECT COUNT(*) FROM ingested_articles WHERE ingested_at > $1`, cutoffTime).Scan(&active)
	if err != nil {
		return nil, err
	}
	stats["active_items"] = active

	rows, err := pl.db.Query(`
		SELECT bias, COUNT(*)
		FROM ingested_articles
		WHERE ingested_at > $1
		GROUP BY bias
	`, cutoffTime)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var bias string
			var count int
			if err := rows.Scan(&bias, &count); err == nil {
				stats["bias_"+bias] = count
			}
		}
	}

	return stats, nil
}

// Close closes the database connection.
func (pl *PostgresLedger) Close() error {
	if pl.db != nil {
		return pl.db.Close()
	}
	return nil
}
