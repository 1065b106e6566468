package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"recruitforge/hiring-engine/internal/config"
	"recruitforge/hiring-engine/internal/models"
	"recruitforge/hiring-engine/internal/repositories"
	"recruitforge/hiring-engine/internal/services"
)

type seedFile struct {
	Jobs       []models.Job       `json:"jobs"`
	Candidates []models.Candidate `json:"candidates"`
}

func main() {
	path := flag.String("file", "./seed/seed_data.json", "path to the seed JSON file")
	flag.Parse()

	log.Println("🚀 Starting data seeding...")

	// Load configuration
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	jobRepo := repositories.NewJobRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	ctx := context.Background()

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("❌ Failed to create genai client: %v", err)
	}
	embedder := services.NewGeminiEmbeddingService(genaiClient, cfg.Gemini.EmbedModel)

	vectorIndex, err := services.NewVectorIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize vector index: %v", err)
	}

	if err := vectorIndex.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("❌ Failed to read seed file %s: %v", *path, err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		log.Fatalf("❌ Failed to parse seed file: %v", err)
	}

	log.Printf("📄 Loaded %d jobs and %d candidates from %s", len(seed.Jobs), len(seed.Candidates), *path)

	successCount := 0
	failCount := 0

	for i := range seed.Jobs {
		job := &seed.Jobs[i]
		if job.ID == uuid.Nil {
			job.ID = uuid.New()
		}

		log.Printf("\n💼 Seeding job: %s", job.Title)

		if err := jobRepo.Create(job); err != nil {
			log.Printf("   ❌ Failed to insert job: %v", err)
			failCount++
			continue
		}

		embedding, err := embedder.Embed(ctx, job.EmbeddingText())
		if err != nil {
			log.Printf("   ⚠️  Failed to generate embedding, stored without one: %v", err)
			successCount++
			continue
		}

		if err := jobRepo.UpdateEmbedding(job.ID, embedding); err != nil {
			log.Printf("   ❌ Failed to store embedding: %v", err)
			failCount++
			continue
		}

		if err := vectorIndex.UpsertEmbedding(ctx, "job", job.ID, embedding); err != nil {
			log.Printf("   ❌ Failed to index embedding: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Job seeded and indexed (%s)", job.ID)
		successCount++
	}

	for i := range seed.Candidates {
		candidate := &seed.Candidates[i]
		if candidate.ID == uuid.Nil {
			candidate.ID = uuid.New()
		}

		log.Printf("\n👤 Seeding candidate: %s", candidate.Name)

		if err := candidateRepo.Create(candidate); err != nil {
			log.Printf("   ❌ Failed to insert candidate: %v", err)
			failCount++
			continue
		}

		embedding, err := embedder.Embed(ctx, candidate.EmbeddingText())
		if err != nil {
			log.Printf("   ⚠️  Failed to generate embedding, stored without one: %v", err)
			successCount++
			continue
		}

		if err := candidateRepo.UpdateEmbedding(candidate.ID, embedding); err != nil {
			log.Printf("   ❌ Failed to store embedding: %v", err)
			failCount++
			continue
		}

		if err := vectorIndex.UpsertEmbedding(ctx, "candidate", candidate.ID, embedding); err != nil {
			log.Printf("   ❌ Failed to index embedding: %v", err)
			failCount++
			continue
		}

		log.Printf("   ✅ Candidate seeded and indexed (%s)", candidate.ID)
		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Seeding Summary:")
	log.Printf("   ✅ Successful: %d records", successCount)
	log.Printf("   ❌ Failed: %d records", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some records failed to seed. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All records seeded successfully!")
}
