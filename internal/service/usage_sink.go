package service

import (
	"context"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
)

// usageSink accumulates provider token counts into the daily ai_usage rows,
// converting tokens to cost with the configured per-1K rates. Accounting is
// best effort and never blocks the calling request.
type usageSink struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        config.AIConfig
	log        logger.ILogger
}

var _ embedding.UsageSink = &usageSink{}

func NewUsageSink(uowFactory unitofwork.RepositoryFactory, cfg config.AIConfig, log logger.ILogger) embedding.UsageSink {
	return &usageSink{
		uowFactory: uowFactory,
		cfg:        cfg,
		log:        log,
	}
}

func (s *usageSink) record(operation string, requests, promptTokens, completionTokens int64, cost float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		uow := s.uowFactory.NewUnitOfWork(ctx)
		err := uow.UsageRepository().Record(ctx, &entity.AiUsage{
			Day:              time.Now().UTC().Truncate(24 * time.Hour),
			Operation:        operation,
			Requests:         requests,
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			EstimatedCost:    cost,
		})
		if err != nil {
			s.log.Warn("usage", "failed to record ai usage", map[string]interface{}{
				"operation": operation,
				"error":     err.Error(),
			})
		}
	}()
}

func (s *usageSink) RecordEmbedding(ctx context.Context, requests, promptTokens int64) {
	cost := float64(promptTokens) / 1000 * s.cfg.EmbeddingCostPer1K
	s.record(entity.UsageOpEmbedding, requests, promptTokens, 0, cost)
}

func (s *usageSink) RecordCompletion(ctx context.Context, requests, promptTokens, completionTokens int64) {
	cost := float64(promptTokens)/1000*s.cfg.PromptCostPer1K +
		float64(completionTokens)/1000*s.cfg.CompletionCostPer1K
	s.record(entity.UsageOpCompletion, requests, promptTokens, completionTokens, cost)
}
