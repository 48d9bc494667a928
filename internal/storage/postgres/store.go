package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"dlmmScope/internal/model"
)

//go:embed schema.sql
var schema string

// ErrPositionNotFound is returned when a position is not registered.
var ErrPositionNotFound = errors.New("position not found")

// Store provides Postgres persistence for positions and their fee and snapshot history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func numeric(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func parseNumeric(text string) (float64, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("parse numeric %q: %w", text, err)
	}
	return d.InexactFloat64(), nil
}

// UpsertPositions inserts or updates registered positions.
func (s *Store) UpsertPositions(ctx context.Context, positions []model.Position) error {
	if len(positions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range positions {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		batch.Queue(`
			INSERT INTO positions (
				address, pool_address, lower_bin_id, upper_bin_id, value_usd, last_active_bin, last_seen_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (address)
			DO UPDATE SET
				pool_address = EXCLUDED.pool_address,
				lower_bin_id = EXCLUDED.lower_bin_id,
				upper_bin_id = EXCLUDED.upper_bin_id,
				value_usd = EXCLUDED.value_usd,
				last_active_bin = COALESCE(EXCLUDED.last_active_bin, positions.last_active_bin),
				last_seen_at = COALESCE(EXCLUDED.last_seen_at, positions.last_seen_at),
				created_at = LEAST(positions.created_at, EXCLUDED.created_at),
				updated_at = now()
		`,
			p.Address,
			p.PoolAddress,
			p.LowerBinID,
			p.UpperBinID,
			numeric(p.ValueUSD),
			p.LastActiveBin,
			p.LastSeenAt,
			createdAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range positions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert position: %w", err)
		}
	}
	return nil
}

// TouchActiveBin caches the last observed active bin of a position.
func (s *Store) TouchActiveBin(ctx context.Context, address string, activeBin int, seenAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE positions SET last_active_bin = $2, last_seen_at = $3, updated_at = now()
		WHERE address = $1
	`, address, activeBin, seenAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", address, ErrPositionNotFound)
	}
	return nil
}

// LoadPosition returns a registered position.
func (s *Store) LoadPosition(ctx context.Context, address string) (model.Position, error) {
	if address == "" {
		return model.Position{}, fmt.Errorf("position address required")
	}
	var (
		p     model.Position
		value string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT address, pool_address, lower_bin_id, upper_bin_id, value_usd::text, last_active_bin, last_seen_at, created_at
		FROM positions WHERE address = $1
	`, address)
	if err := row.Scan(&p.Address, &p.PoolAddress, &p.LowerBinID, &p.UpperBinID, &value, &p.LastActiveBin, &p.LastSeenAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Position{}, fmt.Errorf("%s: %w", address, ErrPositionNotFound)
		}
		return model.Position{}, err
	}
	v, err := parseNumeric(value)
	if err != nil {
		return model.Position{}, err
	}
	p.ValueUSD = v
	return p, nil
}

// InsertFeeClaims records fee harvests; duplicates by timestamp are replaced.
func (s *Store) InsertFeeClaims(ctx context.Context, positionAddress string, claims []model.FeeClaim) error {
	if len(claims) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range claims {
		batch.Queue(`
			INSERT INTO position_fee_claims (position_address, claimed_at, claimed_usd)
			VALUES ($1, $2, $3)
			ON CONFLICT (position_address, claimed_at)
			DO UPDATE SET claimed_usd = EXCLUDED.claimed_usd
		`, positionAddress, c.Timestamp, numeric(c.ClaimedUSD))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range claims {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert fee claim: %w", err)
		}
	}
	return nil
}

// InsertSnapshots records position valuations; duplicates by timestamp are replaced.
func (s *Store) InsertSnapshots(ctx context.Context, positionAddress string, snapshots []model.PositionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO position_snapshots (position_address, taken_at, active_bin, in_range, value_usd, hodl_value_usd)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (position_address, taken_at)
			DO UPDATE SET
				active_bin = EXCLUDED.active_bin,
				in_range = EXCLUDED.in_range,
				value_usd = EXCLUDED.value_usd,
				hodl_value_usd = EXCLUDED.hodl_value_usd
		`,
			positionAddress,
			snap.Timestamp,
			snap.ActiveBin,
			snap.InRange,
			numeric(snap.ValueUSD),
			numeric(snap.HodlValueUSD),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return nil
}

// GetPositionFeeClaims returns claims within the lookback window, oldest first.
func (s *Store) GetPositionFeeClaims(ctx context.Context, positionAddress string, lookbackDays int) ([]model.FeeClaim, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT claimed_at, claimed_usd::text
		FROM position_fee_claims
		WHERE position_address = $1 AND claimed_at >= now() - make_interval(days => $2)
		ORDER BY claimed_at ASC
	`, positionAddress, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("query fee claims: %w", err)
	}
	defer rows.Close()

	var claims []model.FeeClaim
	for rows.Next() {
		var (
			c      model.FeeClaim
			amount string
		)
		if err := rows.Scan(&c.Timestamp, &amount); err != nil {
			return nil, err
		}
		if c.ClaimedUSD, err = parseNumeric(amount); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// GetPositionSnapshotRange returns snapshots within the window with the first and latest marked.
func (s *Store) GetPositionSnapshotRange(ctx context.Context, positionAddress string, days int) (model.SnapshotRange, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT taken_at, active_bin, in_range, value_usd::text, hodl_value_usd::text
		FROM position_snapshots
		WHERE position_address = $1 AND taken_at >= now() - make_interval(days => $2)
		ORDER BY taken_at ASC
	`, positionAddress, days)
	if err != nil {
		return model.SnapshotRange{}, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.PositionSnapshot
	for rows.Next() {
		var (
			snap        model.PositionSnapshot
			value, hodl string
		)
		if err := rows.Scan(&snap.Timestamp, &snap.ActiveBin, &snap.InRange, &value, &hodl); err != nil {
			return model.SnapshotRange{}, err
		}
		if snap.ValueUSD, err = parseNumeric(value); err != nil {
			return model.SnapshotRange{}, err
		}
		if snap.HodlValueUSD, err = parseNumeric(hodl); err != nil {
			return model.SnapshotRange{}, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return model.SnapshotRange{}, err
	}
	return NewSnapshotRange(snapshots), nil
}

// NewSnapshotRange marks the first and latest of time-ordered snapshots.
func NewSnapshotRange(snapshots []model.PositionSnapshot) model.SnapshotRange {
	out := model.SnapshotRange{Snapshots: snapshots}
	if out.Snapshots == nil {
		out.Snapshots = []model.PositionSnapshot{}
	}
	if len(snapshots) > 0 {
		out.First = &snapshots[0]
		out.Latest = &snapshots[len(snapshots)-1]
	}
	return out
}
