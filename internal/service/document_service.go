package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/utils"

	"github.com/google/uuid"
)

// Chunking geometry: ~1500 chars per chunk with 200 overlap keeps each chunk
// comfortably inside the embedding context while preserving continuity at
// boundaries.
const (
	chunkSize    = 1500
	chunkOverlap = 200
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Similar(ctx context.Context, id uuid.UUID, limit int) (*dto.SimilarDocumentsResponse, error)
	Reindex(ctx context.Context, id uuid.UUID) error
}

// searchCache is the slice of the response cache the service needs;
// *cache.ResponseCache satisfies it.
type searchCache interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	responses        searchCache
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	responses searchCache,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		responses:        responses,
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	language := req.Language
	if language == "" {
		language = "en"
	}

	doc := &entity.Document{
		Id:           uuid.New(),
		Title:        req.Title,
		Category:     req.Category,
		Language:     language,
		WarehouseId:  req.WarehouseId,
		DepartmentId: req.DepartmentId,
		Tags:         req.Tags,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.replaceChunks(ctx, uow, doc.Id, req.Content, language); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.enqueueEmbedding(ctx, doc.Id)
	s.invalidateSearchCache(ctx)

	return &dto.CreateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: id},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return nil, err
	}

	// Reads count toward popularity; failures don't block the read.
	_ = uow.DocumentRepository().IncrementViewCount(ctx, id)

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	return &dto.ShowDocumentResponse{
		Id:           doc.Id,
		Title:        doc.Title,
		Content:      strings.Join(contents, "\n"),
		Category:     doc.Category,
		Language:     doc.Language,
		Tags:         doc.Tags,
		WarehouseId:  doc.WarehouseId,
		DepartmentId: doc.DepartmentId,
		ViewCount:    int64(doc.ViewCount),
		ChunkCount:   len(chunks),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *documentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s not found", req.Id)
	}

	doc.Title = req.Title
	doc.Category = req.Category
	if req.Language != "" {
		doc.Language = req.Language
	}
	doc.Tags = req.Tags

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.replaceChunks(ctx, uow, doc.Id, req.Content, doc.Language); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.enqueueEmbedding(ctx, doc.Id)
	s.invalidateSearchCache(ctx)

	return &dto.UpdateDocumentResponse{Id: doc.Id}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateSearchCache(ctx)
	return nil
}

// Similar returns documents whose mean chunk vectors sit closest to the given
// document's, most similar first.
func (s *documentService) Similar(ctx context.Context, id uuid.UUID, limit int) (*dto.SimilarDocumentsResponse, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s not found", id)
	}

	similar, err := uow.DocumentRepository().FindSimilar(ctx, id, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SimilarDocumentItem, len(similar))
	for i, match := range similar {
		items[i] = dto.SimilarDocumentItem{
			Id:         match.Document.Id,
			Title:      match.Document.Title,
			Category:   match.Document.Category,
			Language:   match.Document.Language,
			Similarity: match.Similarity,
		}
	}
	return &dto.SimilarDocumentsResponse{Documents: items}, nil
}

// Reindex re-enqueues embedding for an existing document, e.g. after an
// embedding model change.
func (s *documentService) Reindex(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", id)
	}
	s.enqueueEmbedding(ctx, id)
	return nil
}

// replaceChunks swaps the document's chunk set for a fresh split of content.
// New chunks start unembedded and stay invisible to search until the consumer
// processes them.
func (s *documentService) replaceChunks(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, content, language string) error {
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}

	parts := utils.SplitText(content, chunkSize, chunkOverlap)
	chunks := make([]*entity.DocumentChunk, len(parts))
	for i, part := range parts {
		chunks[i] = &entity.DocumentChunk{
			Id:              uuid.New(),
			DocumentId:      documentId,
			Content:         part,
			ChunkIndex:      i,
			Language:        language,
			ImportanceScore: 1.0,
		}
	}
	return uow.ChunkRepository().CreateBulk(ctx, chunks)
}

func (s *documentService) enqueueEmbedding(ctx context.Context, documentId uuid.UUID) {
	payload, _ := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: documentId})
	_ = s.publisherService.Publish(ctx, payload)
}

// invalidateSearchCache drops cached result pages after corpus changes so the
// next search reflects the new content.
func (s *documentService) invalidateSearchCache(ctx context.Context) {
	_ = s.responses.InvalidatePrefix(ctx, "search:")
}
