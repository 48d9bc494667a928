package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"dlmmScope/internal/model"
)

// PairStatsSource supplies off-chain pair statistics.
type PairStatsSource interface {
	GetPair(ctx context.Context, address string) (PairStats, error)
}

// PoolProvider assembles pool snapshots and bin liquidity from chain accounts and pair statistics.
type PoolProvider struct {
	accounts AccountReader
	stats    PairStatsSource
	decimals *MintDecimalsCache
	logger   *zap.Logger
}

// NewPoolProvider builds a PoolProvider. stats may be nil.
func NewPoolProvider(accounts AccountReader, stats PairStatsSource, logger *zap.Logger) *PoolProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolProvider{
		accounts: accounts,
		stats:    stats,
		decimals: NewMintDecimalsCache(),
		logger:   logger,
	}
}

// LoadLbPair fetches and decodes the pair account.
func (p *PoolProvider) LoadLbPair(ctx context.Context, address string) (LbPair, error) {
	if p.accounts == nil {
		return LbPair{}, fmt.Errorf("account reader is nil")
	}
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return LbPair{}, fmt.Errorf("invalid pool address %q: %w", address, err)
	}
	acc, err := p.accounts.GetAccountInfo(ctx, key)
	if err != nil {
		return LbPair{}, err
	}
	if acc.Owner != "" && acc.Owner != ProgramID.String() {
		return LbPair{}, fmt.Errorf("pool %s is owned by %s, not the DLMM program", address, acc.Owner)
	}
	return DecodeLbPair(acc.Data)
}

// GetPoolState returns a fresh snapshot of the pool. The on-chain pair and the stats API are
// each optional; an error is returned only when neither is available.
func (p *PoolProvider) GetPoolState(ctx context.Context, address string) (model.PoolState, error) {
	pool := model.PoolState{Address: address}

	pair, chainErr := p.LoadLbPair(ctx, address)
	if chainErr != nil {
		p.logger.Warn("lb pair unavailable", zap.String("pool", address), zap.Error(chainErr))
	}

	var stats PairStats
	statsErr := errors.New("stats source not configured")
	if p.stats != nil {
		stats, statsErr = p.stats.GetPair(ctx, address)
		if statsErr != nil {
			p.logger.Warn("pair stats unavailable", zap.String("pool", address), zap.Error(statsErr))
		}
	}

	if chainErr != nil && statsErr != nil {
		return model.PoolState{}, fmt.Errorf("pool %s: %w", address, errors.Join(chainErr, statsErr))
	}

	if statsErr == nil {
		pool.TokenX.Mint = stats.MintX
		pool.TokenY.Mint = stats.MintY
		pool.TokenX.Symbol, pool.TokenY.Symbol = stats.Symbols()
		pool.BinStep = stats.BinStep
		pool.Price = stats.CurrentPrice
		pool.TVL = stats.TVL
		pool.Volume24h = stats.Volume24h
		pool.APR = stats.APR
	}

	if chainErr == nil {
		active := int(pair.ActiveID)
		pool.ActiveBin = &active
		pool.BinStep = pair.BinStep
		pool.TokenX.Mint = pair.TokenXMint.String()
		pool.TokenY.Mint = pair.TokenYMint.String()

		decX, decY, err := p.pairDecimals(ctx, pair)
		if err != nil {
			p.logger.Warn("mint decimals unavailable", zap.String("pool", address), zap.Error(err))
		} else {
			pool.TokenX.Decimals = decX
			pool.TokenY.Decimals = decY
			pool.Price = BinPrice(active, pair.BinStep, decX, decY)
		}
	}

	return pool, nil
}

func (p *PoolProvider) pairDecimals(ctx context.Context, pair LbPair) (uint8, uint8, error) {
	decX, okX := p.decimals.Get(pair.TokenXMint)
	decY, okY := p.decimals.Get(pair.TokenYMint)
	if okX && okY {
		return decX, decY, nil
	}

	accounts, err := p.accounts.GetMultipleAccounts(ctx, []solana.PublicKey{pair.TokenXMint, pair.TokenYMint})
	if err != nil {
		return 0, 0, err
	}
	if len(accounts) != 2 || accounts[0] == nil || accounts[1] == nil {
		return 0, 0, fmt.Errorf("mint accounts: %w", ErrAccountNotFound)
	}
	if decX, err = DecodeMintDecimals(accounts[0].Data); err != nil {
		return 0, 0, fmt.Errorf("token x: %w", err)
	}
	if decY, err = DecodeMintDecimals(accounts[1].Data); err != nil {
		return 0, 0, fmt.Errorf("token y: %w", err)
	}
	p.decimals.Set(pair.TokenXMint, decX)
	p.decimals.Set(pair.TokenYMint, decY)
	return decX, decY, nil
}

// GetActiveBinAndNeighbors returns every initialized bin within binsEachSide of the active bin,
// ordered by bin id.
func (p *PoolProvider) GetActiveBinAndNeighbors(ctx context.Context, address string, binsEachSide int) ([]model.BinLiquidity, error) {
	if binsEachSide < 0 {
		return nil, fmt.Errorf("bins each side must be >= 0")
	}
	pair, err := p.LoadLbPair(ctx, address)
	if err != nil {
		return nil, err
	}
	pairKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, err
	}

	lower := int(pair.ActiveID) - binsEachSide
	upper := int(pair.ActiveID) + binsEachSide

	keys := make([]solana.PublicKey, 0, 4)
	for idx := BinArrayIndex(lower); idx <= BinArrayIndex(upper); idx++ {
		key, err := DeriveBinArray(pairKey, idx)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	accounts, err := p.accounts.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("bin arrays: %w", err)
	}

	bins := make([]model.BinLiquidity, 0, upper-lower+1)
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		arr, err := DecodeBinArray(acc.Data)
		if err != nil {
			p.logger.Warn("skip undecodable bin array", zap.String("pool", address), zap.Error(err))
			continue
		}
		for i, reserve := range arr.Bins {
			id := arr.BinID(i)
			if id < lower || id > upper {
				continue
			}
			bins = append(bins, model.BinLiquidity{BinID: id, AmountX: reserve.AmountX, AmountY: reserve.AmountY})
		}
	}

	sort.Slice(bins, func(i, j int) bool { return bins[i].BinID < bins[j].BinID })
	return bins, nil
}
