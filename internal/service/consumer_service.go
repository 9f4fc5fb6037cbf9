package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mustafa-mbari/aiwmsa/internal/dto"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/specification"
	"github.com/mustafa-mbari/aiwmsa/internal/repository/unitofwork"
	"github.com/mustafa-mbari/aiwmsa/pkg/embedding"
	"github.com/mustafa-mbari/aiwmsa/pkg/events"
	pktNats "github.com/mustafa-mbari/aiwmsa/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embeddings for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if doc == nil {
		log.Printf("[WARN] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted meanwhile? Ack.
		return
	}

	chunks, err := uow.ChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: payload.DocumentId},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to load chunks for %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if len(chunks) == 0 {
		log.Printf("[WARN] Document %s has no chunks to embed", payload.DocumentId)
		msg.Ack()
		return
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := cs.embeddingProvider.EmbedBatch(ctx, texts)
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunks for %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}

	// Chunk ids stay stable across re-embedding: each vector is written in
	// place rather than recreating the rows.
	embedded := 0
	for i, vector := range vectors {
		if vector == nil {
			log.Printf("[WARN] Chunk %d of document %s failed to embed, left unembedded", i, payload.DocumentId)
			continue
		}
		if err := uow.ChunkRepository().UpdateEmbedding(ctx, chunks[i].Id, vector); err != nil {
			log.Printf("[ERROR] Failed to store embedding for chunk %s: %v", chunks[i].Id, err)
			msg.Nack()
			return
		}
		embedded++
	}

	if embedded > 0 {
		mean := meanVector(vectors, cs.embeddingProvider.Dimensions())
		if err := uow.DocumentRepository().UpdateEmbedding(ctx, doc.Id, mean); err != nil {
			log.Printf("[ERROR] Failed to store document mean vector for %s: %v", doc.Id, err)
			msg.Nack()
			return
		}
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIndexed(doc.Id, len(chunks), embedded)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish DOCUMENT_INDEXED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Document processed: %d/%d chunks embedded for DocumentId: %s", embedded, len(chunks), payload.DocumentId)
	msg.Ack()
}

// meanVector averages the non-nil vectors component-wise.
func meanVector(vectors [][]float32, dims int) []float32 {
	mean := make([]float32, dims)
	count := 0
	for _, vector := range vectors {
		if vector == nil || len(vector) != dims {
			continue
		}
		for i, v := range vector {
			mean[i] += v
		}
		count++
	}
	if count == 0 {
		return mean
	}
	for i := range mean {
		mean[i] /= float32(count)
	}
	return mean
}
