package service

import (
	"context"
	"fmt"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/events"
	pktNats "github.com/mustafa-mbari/aiwmsa/pkg/nats"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error)
}

type feedbackService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewFeedbackService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IFeedbackService {
	return &feedbackService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (s *feedbackService) Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Feedback must reference a logged search; dangling feedback is useless
	// for ranking work.
	query, err := uow.SearchQueryRepository().FindOne(ctx, specification.ByID{ID: req.SearchQueryId})
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, fmt.Errorf("search query %s not found", req.SearchQueryId)
	}

	feedback := &entity.SearchFeedback{
		Id:            uuid.New(),
		SearchQueryId: req.SearchQueryId,
		UserId:        userId,
		ResultId:      req.ResultId,
		Rating:        entity.FeedbackRating(req.Rating),
		Clicked:       req.Clicked,
		TimeToClickMs: req.TimeToClickMs,
		DwellTimeMs:   req.DwellTimeMs,
		Comment:       req.Comment,
	}

	if err := uow.FeedbackRepository().Upsert(ctx, feedback); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events.NewFeedbackSubmitted(req.SearchQueryId, userId, req.Rating))
	}

	return &dto.SubmitFeedbackResponse{Id: feedback.Id}, nil
}
