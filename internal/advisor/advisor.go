package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"dlmmScope/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// ErrEmptyResponse is returned when the model produces no choices.
var ErrEmptyResponse = errors.New("advisor returned no choices")

const systemPrompt = `You size liquidity ranges for Meteora DLMM pools on Solana.
Reply with a single JSON object and nothing else:
{"strategy":"Spot|Curve|BidAsk","bins_per_side":int,"bid_bins":int,"ask_bins":int,"confidence":0..1,"rationale":["..."]}
Use bins_per_side for Spot and Curve, bid_bins and ask_bins for BidAsk. Never exceed 34 bins per side.`

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Advisor asks a chat completion model for a range suggestion.
type Advisor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func New(opts Options, logger *zap.Logger) (*Advisor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Advisor{
		client:  openai.NewClientWithConfig(cfg),
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger,
	}, nil
}

// Request is the market state handed to the model.
type Request struct {
	Strategy    model.Strategy                    `json:"strategy"`
	Pool        model.PoolState                   `json:"pool"`
	Context     *model.RangeRecommendationContext `json:"context,omitempty"`
	Algorithmic *model.RangeRecommendation        `json:"algorithmic,omitempty"`
}

// Advise returns the model's suggestion for req. Callers treat errors as "no advice".
func (a *Advisor) Advise(ctx context.Context, req Request) (*model.Advice, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	advice, err := ParseAdvice(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Warn("advisor reply rejected", zap.String("model", a.model), zap.Error(err))
		return nil, err
	}
	advice.Model = a.model
	a.logger.Debug("advisor reply",
		zap.String("pool", req.Pool.Address),
		zap.String("strategy", advice.Strategy),
		zap.Float64("confidence", advice.Confidence),
	)
	return advice, nil
}

// ParseAdvice decodes and validates a model reply. Code fences around the JSON are tolerated.
func ParseAdvice(content string) (*model.Advice, error) {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty advice")
	}

	var advice model.Advice
	if err := json.Unmarshal([]byte(text), &advice); err != nil {
		return nil, fmt.Errorf("decode advice: %w", err)
	}
	strategy, err := model.ParseStrategy(advice.Strategy)
	if err != nil {
		return nil, err
	}
	advice.Strategy = strategy.String()
	if advice.Confidence < 0 || advice.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of [0,1]", advice.Confidence)
	}
	for name, v := range map[string]*int{
		"bins_per_side": advice.BinsPerSide,
		"bid_bins":      advice.BidBins,
		"ask_bins":      advice.AskBins,
	} {
		if v != nil && *v <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", name, *v)
		}
	}
	if strategy.IsSymmetric() && advice.BinsPerSide == nil {
		return nil, fmt.Errorf("%s advice needs bins_per_side", strategy)
	}
	if !strategy.IsSymmetric() && advice.BidBins == nil && advice.AskBins == nil {
		return nil, fmt.Errorf("%s advice needs bid_bins or ask_bins", strategy)
	}
	return &advice, nil
}
