package advice

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/solarsense-cli/internal/cost"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/pkg/anthropic"
)

// ClaudeConfig configures ClaudeSource.
type ClaudeConfig struct {
	Model     string
	MaxTokens int64
	// RequestsPerMinute paces outbound calls. Zero disables pacing.
	RequestsPerMinute int
	// Pricing, when set, prices each reply's token usage onto Metrics.
	Pricing *cost.Calculator
	Metrics *metrics.Metrics
}

// ClaudeSource generates advice with the Anthropic Messages API.
type ClaudeSource struct {
	client  anthropic.Client
	cfg     ClaudeConfig
	limiter *rate.Limiter
}

// NewClaudeSource wraps client. A nil client yields a source that always
// fails with ReasonNotConfigured.
func NewClaudeSource(client anthropic.Client, cfg ClaudeConfig) *ClaudeSource {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	s := &ClaudeSource{client: client, cfg: cfg}
	if cfg.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return s
}

// Generate sends a single request. No retries are attempted.
func (s *ClaudeSource) Generate(ctx context.Context, p model.AuditProfile, totalKWh int) ([]model.AdviceItem, error) {
	if s.client == nil || strings.TrimSpace(s.cfg.Model) == "" {
		return nil, serviceErr(ReasonNotConfigured, nil)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, serviceErr(ReasonRequest, eris.Wrap(err, "rate limit wait"))
		}
	}

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildPrompt(p, totalKWh)},
		},
	})
	if err != nil {
		return nil, serviceErr(ReasonRequest, err)
	}
	resp.Usage.Log(s.cfg.Model, "advice")
	s.recordCost(p, resp.Usage)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, serviceErr(ReasonEmptyResponse, nil)
	}

	items, err := ParseAdvice(text)
	if err != nil {
		zap.L().Debug("advice: unparseable reply",
			zap.String("audit_id", p.ID),
			zap.String("stop_reason", resp.StopReason),
			zap.Int("reply_len", len(text)),
		)
		return nil, err
	}
	return items, nil
}

func (s *ClaudeSource) recordCost(p model.AuditProfile, u anthropic.TokenUsage) {
	if s.cfg.Pricing == nil {
		return
	}
	if !s.cfg.Pricing.Known(s.cfg.Model) {
		zap.L().Debug("advice: no pricing for model", zap.String("model", s.cfg.Model))
		return
	}
	usd := s.cfg.Pricing.Claude(s.cfg.Model, u.InputTokens, u.OutputTokens)
	s.cfg.Metrics.AddAdviceCost(usd)
	zap.L().Debug("advice: call cost",
		zap.String("audit_id", p.ID),
		zap.Float64("usd", usd),
	)
}
