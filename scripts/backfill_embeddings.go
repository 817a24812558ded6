package main

import (
	"context"
	"log"

	"alfredoptarigan/talent-matcher/internal/config"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
)

const staleBatchSize = 200

func main() {
	log.Println("🚀 Starting embedding backfill...")

	// Load configuration
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	candRepo := repositories.NewCandidateRepository(db)
	jobRepo := repositories.NewJobRepository(db)

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	vectorStore, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := vectorStore.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	embedder := services.NewProfileEmbedder(candRepo, jobRepo, geminiService, vectorStore)

	ctx := context.Background()
	successCount := 0
	failCount := 0

	candidates, err := candRepo.ListEmbeddingStale(staleBatchSize)
	if err != nil {
		log.Fatalf("❌ Failed to list stale candidates: %v", err)
	}
	log.Printf("📋 Found %d stale candidate profiles\n", len(candidates))

	for _, candidate := range candidates {
		log.Printf("🧭 Embedding candidate %s (%s)\n", candidate.ID, candidate.FullName)
		if err := embedder.RefreshCandidate(ctx, candidate.ID); err != nil {
			log.Printf("❌ Failed: %v\n", err)
			failCount++
			continue
		}
		successCount++
	}

	jobs, err := jobRepo.ListEmbeddingStale(staleBatchSize)
	if err != nil {
		log.Fatalf("❌ Failed to list stale jobs: %v", err)
	}
	log.Printf("📋 Found %d stale job profiles\n", len(jobs))

	for _, job := range jobs {
		log.Printf("🧭 Embedding job %s (%s)\n", job.ID, job.Title)
		if err := embedder.RefreshJob(ctx, job.ID); err != nil {
			log.Printf("❌ Failed: %v\n", err)
			failCount++
			continue
		}
		successCount++
	}

	log.Printf("\n✅ Backfill completed: %d succeeded, %d failed\n", successCount, failCount)
}
