package main

import (
	"context"
	"testing"
)

func TestResolvePositionFromFlags(t *testing.T) {
	cmd := newRebalanceCmd()
	if err := cmd.Flags().Parse([]string{"--pool=pool1", "--lower=-5", "--upper=5", "--value=250"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	pos, err := resolvePosition(context.Background(), cmd, nil, "pos1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if pos.Address != "pos1" || pos.PoolAddress != "pool1" || pos.LowerBinID != -5 || pos.UpperBinID != 5 || pos.ValueUSD != 250 {
		t.Fatalf("unexpected position %+v", pos)
	}
}

func TestResolvePositionRequiresPool(t *testing.T) {
	cmd := newRebalanceCmd()
	if _, err := resolvePosition(context.Background(), cmd, nil, "pos1"); err == nil {
		t.Fatalf("expected error without --pool")
	}

	cmd = newRebalanceCmd()
	if err := cmd.Flags().Parse([]string{"--pool=p", "--lower=5", "--upper=1"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := resolvePosition(context.Background(), cmd, nil, "pos1"); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
