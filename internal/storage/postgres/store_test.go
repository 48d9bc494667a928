package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"dlmmScope/internal/model"
)

func TestNewSnapshotRange(t *testing.T) {
	empty := NewSnapshotRange(nil)
	if empty.First != nil || empty.Latest != nil || empty.Snapshots == nil {
		t.Fatalf("unexpected empty range %+v", empty)
	}

	snaps := []model.PositionSnapshot{{ActiveBin: 1}, {ActiveBin: 2}, {ActiveBin: 3}}
	r := NewSnapshotRange(snaps)
	if r.First.ActiveBin != 1 || r.Latest.ActiveBin != 3 || len(r.Snapshots) != 3 {
		t.Fatalf("unexpected range %+v", r)
	}
}

func TestParseNumeric(t *testing.T) {
	v, err := parseNumeric("12.345000")
	if err != nil || v != 12.345 {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if _, err := parseNumeric("abc"); err == nil {
		t.Fatalf("expected parse error")
	}
	if numeric(0.1).String() != "0.1" {
		t.Fatalf("numeric(0.1) = %s", numeric(0.1))
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

// TestStoreRoundTrip runs against a real database when DLMM_TEST_PG_DSN is set.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("DLMM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("DLMM_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	address := "test-position-" + time.Now().Format("150405.000000")
	now := time.Now().UTC().Truncate(time.Second)
	pos := model.Position{Address: address, PoolAddress: "pool", LowerBinID: -10, UpperBinID: 10, ValueUSD: 1234.5, CreatedAt: now.AddDate(0, 0, -3)}
	if err := store.UpsertPositions(ctx, []model.Position{pos}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.TouchActiveBin(ctx, address, 4, now); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := store.InsertFeeClaims(ctx, address, []model.FeeClaim{
		{Timestamp: now.Add(-2 * time.Hour), ClaimedUSD: 1.25},
		{Timestamp: now.Add(-time.Hour), ClaimedUSD: 0.75},
	}); err != nil {
		t.Fatalf("claims: %v", err)
	}
	if err := store.InsertSnapshots(ctx, address, []model.PositionSnapshot{
		{Timestamp: now.Add(-time.Hour), ActiveBin: 3, InRange: true, ValueUSD: 1230, HodlValueUSD: 1240},
	}); err != nil {
		t.Fatalf("snapshots: %v", err)
	}

	loaded, err := store.LoadPosition(ctx, address)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ValueUSD != 1234.5 || loaded.LastActiveBin == nil || *loaded.LastActiveBin != 4 {
		t.Fatalf("unexpected position %+v", loaded)
	}

	claims, err := store.GetPositionFeeClaims(ctx, address, 7)
	if err != nil || len(claims) != 2 || claims[0].ClaimedUSD != 1.25 {
		t.Fatalf("claims=%+v err=%v", claims, err)
	}
	history, err := store.GetPositionSnapshotRange(ctx, address, 7)
	if err != nil || history.Latest == nil || history.Latest.HodlValueUSD != 1240 {
		t.Fatalf("history=%+v err=%v", history, err)
	}

	if _, err := store.LoadPosition(ctx, address+"-missing"); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}
