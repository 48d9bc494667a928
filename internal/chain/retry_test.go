package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

type nodeError struct{}

func (nodeError) Error() string  { return "invalid param" }
func (nodeError) ErrorCode() int { return -32602 }

func TestIsPermanent(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("connection reset"), false},
		{&StatusError{StatusCode: 503}, false},
		{&StatusError{StatusCode: 429}, false},
		{&StatusError{StatusCode: 404}, true},
		{fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 400}), true},
		{rpc.HTTPError{StatusCode: 502}, false},
		{rpc.HTTPError{StatusCode: 401}, true},
		{nodeError{}, true},
		{context.Canceled, true},
	}
	for _, tc := range cases {
		if got := isPermanent(tc.err); got != tc.want {
			t.Fatalf("isPermanent(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return nodeError{}
	})
	if !errors.Is(err, nodeError{}) || calls != 1 {
		t.Fatalf("permanent error retried: err=%v calls=%d", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	if err := withRetry(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return ctx.Err()
	}); !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("cancelled retry: err=%v calls=%d", err, calls)
	}
}
