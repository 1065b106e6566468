package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"recruitforge/hiring-engine/internal/models"
	"recruitforge/hiring-engine/internal/repositories"
	"recruitforge/hiring-engine/internal/services"
)

type MatchHandler struct {
	rankingRepo repositories.RankingRepository
	jobRepo     repositories.JobRepository
	worker      services.Worker
	index       services.VectorIndexService
	embedder    services.EmbeddingService
}

func NewMatchHandler(
	rankingRepo repositories.RankingRepository,
	jobRepo repositories.JobRepository,
	worker services.Worker,
	index services.VectorIndexService,
	embedder services.EmbeddingService,
) *MatchHandler {
	return &MatchHandler{
		rankingRepo: rankingRepo,
		jobRepo:     jobRepo,
		worker:      worker,
		index:       index,
		embedder:    embedder,
	}
}

// HandleRank handles POST /jobs/:id/rank
func (h *MatchHandler) HandleRank(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	if _, err := h.jobRepo.FindByID(jobID); err != nil {
		return errorResponse(c, err)
	}

	ranking := &models.RankingJob{
		ID:        uuid.New(),
		JobID:     jobID,
		Limit:     limit,
		Status:    models.RankingQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.rankingRepo.Create(ranking); err != nil {
		return errorResponse(c, err)
	}

	h.worker.EnqueueRanking(ranking.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.RankResponse{
		ID:     ranking.ID.String(),
		Status: string(ranking.Status),
	})
}

// HandleGetRanking handles GET /rankings/:id
func (h *MatchHandler) HandleGetRanking(c *fiber.Ctx) error {
	rankingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ranking id format",
		})
	}

	ranking, err := h.rankingRepo.FindByID(rankingID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.RankingResultResponse{
		ID:           ranking.ID.String(),
		JobID:        ranking.JobID.String(),
		Status:       ranking.Status,
		Results:      ranking.Results,
		ErrorMessage: ranking.ErrorMessage,
	})
}

// HandleSimilarCandidates handles GET /jobs/:id/similar
func (h *MatchHandler) HandleSimilarCandidates(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job id format",
		})
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return errorResponse(c, err)
	}

	vector := job.Embedding
	if len(vector) == 0 {
		vector, err = h.embedder.Embed(c.UserContext(), job.EmbeddingText())
		if err != nil {
			return errorResponse(c, err)
		}
	}

	points, err := h.index.SearchSimilar(c.UserContext(), vector, "candidate", limit)
	if err != nil {
		return errorResponse(c, err)
	}

	results := make([]models.SimilarCandidate, 0, len(points))
	for _, p := range points {
		results = append(results, models.SimilarCandidate{
			CandidateID: p.EntityID,
			Similarity:  p.Score,
		})
	}

	return c.JSON(fiber.Map{
		"job_id":  jobID.String(),
		"results": results,
	})
}
