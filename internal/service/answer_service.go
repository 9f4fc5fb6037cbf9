package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/pkg/logger"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/events"
	"github.com/mustafa-mbari/aiwmsa/pkg/llm"
	pktNats "github.com/mustafa-mbari/aiwmsa/pkg/nats"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/answer"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/rerank"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/search"
	"github.com/mustafa-mbari/aiwmsa/pkg/rag/suggest"

	"github.com/google/uuid"
)

type IAnswerService interface {
	Answer(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest) (*dto.AnswerResponse, error)

	// AnswerStream synthesizes with fragment delivery through onFragment.
	// The returned response carries the fully accumulated answer.
	AnswerStream(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest, onFragment func(fragment string) error) (*dto.AnswerResponse, error)

	// Compose synthesizes from results a search already retrieved and
	// reranked: no second embedding or vector query, no conversation state.
	// Returns nil when no result clears the answer threshold.
	Compose(ctx context.Context, query string, results []search.Result, language string) (*dto.AnswerPayload, error)
}

type answerService struct {
	uowFactory     unitofwork.RepositoryFactory
	orchestrator   *search.Orchestrator
	synthesizer    *answer.Synthesizer
	suggester      *suggest.Suggester
	llmProvider    llm.Provider
	eventPublisher *pktNats.Publisher
	cfg            config.SearchConfig
	aiCfg          config.AIConfig
	log            logger.ILogger
}

func NewAnswerService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *search.Orchestrator,
	synthesizer *answer.Synthesizer,
	suggester *suggest.Suggester,
	llmProvider llm.Provider,
	eventPublisher *pktNats.Publisher,
	cfg config.SearchConfig,
	aiCfg config.AIConfig,
	log logger.ILogger,
) IAnswerService {
	return &answerService{
		uowFactory:     uowFactory,
		orchestrator:   orchestrator,
		synthesizer:    synthesizer,
		suggester:      suggester,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		aiCfg:          aiCfg,
		log:            log,
	}
}

const (
	minAnswerQueryLen = 5
	maxAnswerQueryLen = 1000
)

func (s *answerService) validateQuery(query string) error {
	n := len([]rune(strings.TrimSpace(query)))
	if n < minAnswerQueryLen || n > maxAnswerQueryLen {
		return search.ErrInvalidQuery
	}
	return nil
}

func synthesisOptions(req *dto.AnswerRequest) answer.Options {
	return answer.Options{
		Type:     answer.AnswerType(req.Type),
		Language: req.Language,
	}
}

// payload shapes a synthesized answer for the wire, pricing token usage
// with the configured per-1K rates. Returns nil when nothing was found.
func (s *answerService) payload(ctx context.Context, query string, ans *answer.Answer, hits []rerank.Result) *dto.AnswerPayload {
	if ans == nil {
		return nil
	}
	total := ans.PromptTokens + ans.CompletionTokens
	cost := float64(ans.PromptTokens)/1000*s.aiCfg.PromptCostPer1K +
		float64(ans.CompletionTokens)/1000*s.aiCfg.CompletionCostPer1K
	return &dto.AnswerPayload{
		Text:             ans.Text,
		Confidence:       ans.Confidence,
		Sources:          ans.Sources,
		RelatedQuestions: s.suggester.Suggest(ctx, query, hits),
		Usage: &dto.AnswerUsage{
			PromptTokens:     ans.PromptTokens,
			CompletionTokens: ans.CompletionTokens,
			TotalTokens:      total,
			EstimatedCost:    cost,
		},
	}
}

func (s *answerService) Compose(ctx context.Context, query string, results []search.Result, language string) (*dto.AnswerPayload, error) {
	hits := make([]rerank.Result, 0, len(results))
	for _, r := range results {
		if r.Similarity < s.cfg.AnswerThreshold {
			continue
		}
		hits = append(hits, rerank.Result{
			Scored: &entity.ScoredChunk{
				Chunk: &entity.DocumentChunk{
					Id:         r.ChunkId,
					DocumentId: r.DocumentId,
					Content:    r.Content,
				},
				Similarity:       r.Similarity,
				DocumentTitle:    r.DocumentTitle,
				DocumentCategory: r.DocumentCategory,
			},
			FinalScore: r.FinalScore,
		})
	}

	ans, err := s.synthesizer.Synthesize(ctx, query, hits, nil, answer.Options{Language: language})
	if err != nil {
		return nil, err
	}
	return s.payload(ctx, query, ans, hits), nil
}

// resolveConversation loads or starts the conversation and returns its id
// plus the recent history as provider messages.
func (s *answerService) resolveConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId *uuid.UUID, conversationId *uuid.UUID, query string) (uuid.UUID, []llm.Message, error) {
	if conversationId != nil {
		conv, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: *conversationId})
		if err != nil {
			return uuid.Nil, nil, err
		}
		if conv != nil {
			messages, err := uow.ConversationRepository().RecentMessages(ctx, conv.Id, s.cfg.HistoryTurns*2)
			if err != nil {
				return uuid.Nil, nil, err
			}
			history := make([]llm.Message, len(messages))
			for i, msg := range messages {
				history[i] = llm.Message{Role: msg.Role, Content: msg.Content}
			}
			return conv.Id, history, nil
		}
	}

	title := query
	if len([]rune(title)) > 80 {
		title = string([]rune(title)[:80])
	}
	conv := &entity.Conversation{
		Id:     uuid.New(),
		UserId: userId,
		Title:  title,
	}
	if err := uow.ConversationRepository().Create(ctx, conv); err != nil {
		return uuid.Nil, nil, err
	}
	return conv.Id, nil, nil
}

func (s *answerService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID, query string, ans *answer.Answer) {
	userMsg := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           entity.MessageRoleUser,
		Content:        query,
	}
	if err := uow.ConversationRepository().CreateMessage(ctx, userMsg); err != nil {
		s.log.Warn("answer", "failed to persist user message", map[string]interface{}{"error": err.Error()})
		return
	}

	content := "No relevant information was found in the knowledge base."
	metadata := map[string]interface{}{}
	promptTokens, completionTokens := 0, 0
	if ans != nil {
		content = ans.Text
		metadata["confidence"] = ans.Confidence
		metadata["sources"] = ans.Sources
		promptTokens = ans.PromptTokens
		completionTokens = ans.CompletionTokens
	}

	assistantMsg := &entity.ConversationMessage{
		Id:               uuid.New(),
		ConversationId:   conversationId,
		Role:             entity.MessageRoleAssistant,
		Content:          content,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Metadata:         metadata,
	}
	if err := uow.ConversationRepository().CreateMessage(ctx, assistantMsg); err != nil {
		s.log.Warn("answer", "failed to persist assistant message", map[string]interface{}{"error": err.Error()})
	}

	_ = uow.ConversationRepository().Touch(ctx, conversationId)
}

func (s *answerService) Answer(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest) (*dto.AnswerResponse, error) {
	started := time.Now()

	if err := s.validateQuery(req.Query); err != nil {
		return nil, err
	}

	if flagged, err := s.llmProvider.Moderate(ctx, req.Query); err == nil && flagged {
		return nil, search.ErrInvalidQuery
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversationId, history, err := s.resolveConversation(ctx, uow, userId, req.ConversationId, req.Query)
	if err != nil {
		return nil, err
	}

	hits, err := s.orchestrator.Retrieve(ctx, req.Query, s.cfg.DefaultLimit, s.cfg.AnswerThreshold, toEntityFilters(req.Filters))
	if err != nil {
		return nil, err
	}

	ans, err := s.synthesizer.Synthesize(ctx, req.Query, hits, history, synthesisOptions(req))
	if err != nil {
		return nil, err
	}

	s.persistTurn(ctx, uow, conversationId, req.Query, ans)

	if ans != nil && s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewAnswerGenerated(req.Query, ans.Confidence, len(ans.Sources)))
	}

	return &dto.AnswerResponse{
		Answer:          s.payload(ctx, req.Query, ans, hits),
		ConversationId:  conversationId,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
	}, nil
}

func (s *answerService) AnswerStream(ctx context.Context, userId *uuid.UUID, req *dto.AnswerRequest, onFragment func(fragment string) error) (*dto.AnswerResponse, error) {
	started := time.Now()

	if err := s.validateQuery(req.Query); err != nil {
		return nil, err
	}

	if flagged, err := s.llmProvider.Moderate(ctx, req.Query); err == nil && flagged {
		return nil, search.ErrInvalidQuery
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversationId, history, err := s.resolveConversation(ctx, uow, userId, req.ConversationId, req.Query)
	if err != nil {
		return nil, err
	}

	hits, err := s.orchestrator.Retrieve(ctx, req.Query, s.cfg.DefaultLimit, s.cfg.AnswerThreshold, toEntityFilters(req.Filters))
	if err != nil {
		return nil, err
	}

	stream, ans, err := s.synthesizer.SynthesizeStream(ctx, req.Query, hits, history, synthesisOptions(req))
	if err != nil {
		return nil, err
	}

	if stream == nil {
		// Empty context: persist the turn and let the caller send the
		// no-answer sentinel.
		s.persistTurn(ctx, uow, conversationId, req.Query, nil)
		return &dto.AnswerResponse{
			Answer:          nil,
			ConversationId:  conversationId,
			ExecutionTimeMs: time.Since(started).Milliseconds(),
		}, nil
	}
	defer stream.Close()

	var full strings.Builder
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if err := onFragment(fragment); err != nil {
			// Client went away; keep what was generated so far.
			break
		}
	}
	ans.Text = full.String()
	ans.PromptTokens, ans.CompletionTokens = stream.Usage()

	s.persistTurn(ctx, uow, conversationId, req.Query, ans)

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewAnswerGenerated(req.Query, ans.Confidence, len(ans.Sources)))
	}

	return &dto.AnswerResponse{
		Answer:          s.payload(ctx, req.Query, ans, hits),
		ConversationId:  conversationId,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
	}, nil
}
