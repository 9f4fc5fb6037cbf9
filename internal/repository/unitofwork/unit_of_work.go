package unitofwork

import (
	"context"

	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	SearchQueryRepository() contract.SearchQueryRepository
	FeedbackRepository() contract.FeedbackRepository
	EmbeddingCacheRepository() contract.EmbeddingCacheRepository
	ConversationRepository() contract.ConversationRepository
	SuggestionRepository() contract.SuggestionRepository
	UsageRepository() contract.UsageRepository
}
