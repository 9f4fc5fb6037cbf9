package service

import (
	"context"
	"testing"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/entity"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/contract"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// The fakes embed the contract interfaces and override only what the
// document service touches, so unused methods panic loudly if reached.

type stubDocumentRepo struct {
	contract.DocumentRepository

	existing *entity.Document
	created  int
	updated  int
	deleted  int
}

func (r *stubDocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	r.created++
	return nil
}

func (r *stubDocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	r.updated++
	return nil
}

func (r *stubDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deleted++
	return nil
}

func (r *stubDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return r.existing, nil
}

type stubChunkRepo struct {
	contract.ChunkRepository
}

func (r *stubChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}

func (r *stubChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}

type stubUow struct {
	unitofwork.UnitOfWork

	docs   *stubDocumentRepo
	chunks *stubChunkRepo
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) DocumentRepository() contract.DocumentRepository { return u.docs }
func (u *stubUow) ChunkRepository() contract.ChunkRepository       { return u.chunks }

type stubFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type recordingPublisher struct {
	published int
}

func (p *recordingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.published++
	return nil
}

type recordingSearchCache struct {
	prefixes []string
}

func (c *recordingSearchCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	c.prefixes = append(c.prefixes, prefix)
	return nil
}

func newDocumentFixture(existing *entity.Document) (IDocumentService, *stubDocumentRepo, *recordingPublisher, *recordingSearchCache) {
	docs := &stubDocumentRepo{existing: existing}
	uow := &stubUow{docs: docs, chunks: &stubChunkRepo{}}
	publisher := &recordingPublisher{}
	responses := &recordingSearchCache{}
	svc := NewDocumentService(&stubFactory{uow: uow}, publisher, responses)
	return svc, docs, publisher, responses
}

func TestCreateDocumentInvalidatesSearchCache(t *testing.T) {
	svc, docs, publisher, responses := newDocumentFixture(nil)

	resp, err := svc.Create(context.Background(), &dto.CreateDocumentRequest{
		Title:    "Forklift charging",
		Category: "equipment",
		Content:  "Charge forklifts in bay 4 overnight.",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, resp.Id)

	require.Equal(t, 1, docs.created)
	require.Equal(t, 1, publisher.published)
	require.Equal(t, []string{"search:"}, responses.prefixes)
}

func TestUpdateDocumentInvalidatesSearchCache(t *testing.T) {
	existing := &entity.Document{Id: uuid.New(), Title: "Old", Language: "en"}
	svc, docs, _, responses := newDocumentFixture(existing)

	_, err := svc.Update(context.Background(), &dto.UpdateDocumentRequest{
		Id:      existing.Id,
		Title:   "New",
		Content: "Updated body.",
	})
	require.NoError(t, err)

	require.Equal(t, 1, docs.updated)
	require.Equal(t, []string{"search:"}, responses.prefixes)
}

func TestDeleteDocumentInvalidatesSearchCache(t *testing.T) {
	svc, docs, _, responses := newDocumentFixture(nil)

	err := svc.Delete(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Equal(t, 1, docs.deleted)
	require.Equal(t, []string{"search:"}, responses.prefixes)
}
