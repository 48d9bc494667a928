package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// maxAccountsPerCall is the getMultipleAccounts key limit of Solana RPC nodes.
const maxAccountsPerCall = 100

// ErrAccountNotFound is returned when an account does not exist on chain.
var ErrAccountNotFound = errors.New("account not found")

// Account is the decoded payload of a Solana account.
type Account struct {
	Owner    string
	Lamports uint64
	Data     []byte
}

// AccountReader reads raw account data.
type AccountReader interface {
	GetAccountInfo(ctx context.Context, key solana.PublicKey) (*Account, error)
	GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*Account, error)
}

// ClientOptions tunes RPC retries.
type ClientOptions struct {
	Commitment   string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client wraps a JSON-RPC 2.0 client speaking the Solana RPC dialect.
type Client struct {
	rpcClient *rpc.Client
	opts      ClientOptions
	logger    *zap.Logger
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, opts ClientOptions, logger *zap.Logger) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	if opts.Commitment == "" {
		opts.Commitment = "confirmed"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		rpcClient: rpcClient,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

type rpcAccount struct {
	Data     []string `json:"data"`
	Owner    string   `json:"owner"`
	Lamports uint64   `json:"lamports"`
}

type accountInfoResult struct {
	Value *rpcAccount `json:"value"`
}

type multipleAccountsResult struct {
	Value []*rpcAccount `json:"value"`
}

func (c *Client) accountConfig() map[string]string {
	return map[string]string{
		"encoding":   "base64",
		"commitment": c.opts.Commitment,
	}
}

// GetAccountInfo fetches a single account. It returns ErrAccountNotFound for empty accounts.
func (c *Client) GetAccountInfo(ctx context.Context, key solana.PublicKey) (*Account, error) {
	var result accountInfoResult
	err := withRetry(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func(ctx context.Context) error {
		err := c.rpcClient.CallContext(ctx, &result, "getAccountInfo", key.String(), c.accountConfig())
		if err != nil {
			c.logger.Warn("getAccountInfo failed", zap.String("account", key.String()), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", key, err)
	}
	if result.Value == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrAccountNotFound)
	}
	return decodeAccount(result.Value)
}

// GetMultipleAccounts fetches accounts in request-sized batches. Missing accounts are returned as nil.
func (c *Client) GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([]*Account, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	batches, err := SplitRange(0, uint64(len(keys)-1), maxAccountsPerCall)
	if err != nil {
		return nil, err
	}

	out := make([]*Account, 0, len(keys))
	for _, batch := range batches {
		encoded := make([]string, 0, batch.To-batch.From+1)
		for _, key := range keys[batch.From : batch.To+1] {
			encoded = append(encoded, key.String())
		}

		var result multipleAccountsResult
		err := withRetry(ctx, c.opts.MaxRetries, c.opts.RetryBackoff, func(ctx context.Context) error {
			err := c.rpcClient.CallContext(ctx, &result, "getMultipleAccounts", encoded, c.accountConfig())
			if err != nil {
				c.logger.Warn("getMultipleAccounts failed", zap.Int("keys", len(encoded)), zap.Error(err))
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("get multiple accounts: %w", err)
		}
		if len(result.Value) != len(encoded) {
			return nil, fmt.Errorf("get multiple accounts: expected %d values, got %d", len(encoded), len(result.Value))
		}

		for _, raw := range result.Value {
			if raw == nil {
				out = append(out, nil)
				continue
			}
			acc, err := decodeAccount(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, acc)
		}
	}
	return out, nil
}

func decodeAccount(raw *rpcAccount) (*Account, error) {
	if len(raw.Data) == 0 {
		return &Account{Owner: raw.Owner, Lamports: raw.Lamports}, nil
	}
	if len(raw.Data) > 1 && raw.Data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account encoding %q", raw.Data[1])
	}
	data, err := base64.StdEncoding.DecodeString(raw.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return &Account{Owner: raw.Owner, Lamports: raw.Lamports, Data: data}, nil
}
