package sensor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads the newest row of a readings table written by an external logger.
type Postgres struct {
	pool  *pgxpool.Pool
	query string
}

const latestReadingSQL = `
    SELECT temperature, humidity
    FROM %s
    ORDER BY ts DESC
    LIMIT 1
`

// NewPostgres opens a pgx pool. table may be schema-qualified ("climate.readings").
func NewPostgres(ctx context.Context, databaseURL, table string) (*Postgres, error) {
	query, err := latestReadingQuery(table)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	return &Postgres{pool: pool, query: query}, nil
}

// Close releases the pool resources.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Acquire(ctx context.Context) (float64, float64, error) {
	var temperature, humidity *float64
	if err := p.pool.QueryRow(ctx, p.query).Scan(&temperature, &humidity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrNoReading
		}
		return 0, 0, fmt.Errorf("query latest reading: %w", err)
	}
	return valueOrNaN(temperature), valueOrNaN(humidity), nil
}

func latestReadingQuery(table string) (string, error) {
	parts := strings.Split(table, ".")
	for _, part := range parts {
		if part == "" {
			return "", fmt.Errorf("invalid table name: %q", table)
		}
	}
	return fmt.Sprintf(latestReadingSQL, pgx.Identifier(parts).Sanitize()), nil
}
