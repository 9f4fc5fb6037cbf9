package main

import (
	"log"

	"github.com/mustafa-mbari/aiwmsa/internal/config"
	"github.com/mustafa-mbari/aiwmsa/internal/model"
	"github.com/mustafa-mbari/aiwmsa/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(cfg.Database)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums (Things GORM AutoMigrate doesn't do perfectly)
	log.Println("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		// Extensions
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'feedback_rating') THEN CREATE TYPE feedback_rating AS ENUM ('helpful', 'not_helpful', 'partially_helpful'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'message_role') THEN CREATE TYPE message_role AS ENUM ('user', 'assistant', 'system'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate for 10 Tables...")

	models := []interface{}{
		&model.Document{},
		&model.DocumentChunk{},
		&model.SearchQuery{},
		&model.SearchFeedback{},
		&model.CachedEmbedding{},
		&model.Conversation{},
		&model.ConversationMessage{},
		&model.SearchSuggestion{},
		&model.RelatedSearch{},
		&model.AiUsage{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Indexes GORM tags can't express
	log.Println("Step 3: Creating Vector Indexes...")

	postMigrationSQL := []string{
		// IVFFlat indexes for approximate nearest neighbour on cosine distance.
		// Lists sized for a corpus in the tens of thousands of chunks.
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding
		 ON document_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,

		`CREATE INDEX IF NOT EXISTS idx_documents_embedding
		 ON documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);`,

		// Trending and analytics scans are time-windowed.
		`CREATE INDEX IF NOT EXISTS idx_search_queries_created_at
		 ON search_queries (created_at DESC);`,

		// Feedback upsert target. NULLS NOT DISTINCT (PG15+) so query-level
		// feedback (result_id NULL) conflicts like per-result feedback does
		// instead of inserting a new row per resubmission.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_query_user_result
		 ON search_feedback (search_query_id, user_id, result_id) NULLS NOT DISTINCT;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
