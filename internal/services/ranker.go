package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
	"recruitforge/hiring-engine/internal/repositories"
)

// RankingService executes queued ranking jobs: score every stored candidate
// against one job listing and persist the ordered result.
type RankingService interface {
	ProcessRanking(ctx context.Context, rankingID uuid.UUID) error
}

type rankingService struct {
	rankingRepo   repositories.RankingRepository
	jobRepo       repositories.JobRepository
	candidateRepo repositories.CandidateRepository
	scorer        MatchScorer
	logger        *zap.Logger
}

func NewRankingService(
	rankingRepo repositories.RankingRepository,
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	scorer MatchScorer,
	logger *zap.Logger,
) RankingService {
	return &rankingService{
		rankingRepo:   rankingRepo,
		jobRepo:       jobRepo,
		candidateRepo: candidateRepo,
		scorer:        scorer,
		logger:        logger,
	}
}

// ProcessRanking implements RankingService.
func (r *rankingService) ProcessRanking(ctx context.Context, rankingID uuid.UUID) error {
	if err := r.rankingRepo.UpdateStatus(rankingID, models.RankingProcessing); err != nil {
		return fmt.Errorf("failed to update ranking status: %w", err)
	}

	ranking, err := r.rankingRepo.FindByID(rankingID)
	if err != nil {
		return err
	}

	job, err := r.jobRepo.FindByID(ranking.JobID)
	if err != nil {
		r.recordError(rankingID, err)
		return err
	}

	candidates, err := r.candidateRepo.FindAll()
	if err != nil {
		r.recordError(rankingID, err)
		return err
	}

	results := r.scorer.Rank(ctx, job, candidates, ranking.Limit)

	if err := r.rankingRepo.UpdateResults(rankingID, results); err != nil {
		return fmt.Errorf("failed to save ranking results: %w", err)
	}

	r.logger.Info("ranking completed",
		zap.String("ranking_id", rankingID.String()),
		zap.String("job_id", ranking.JobID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
	)
	return nil
}

func (r *rankingService) recordError(rankingID uuid.UUID, err error) {
	if updateErr := r.rankingRepo.UpdateError(rankingID, err.Error()); updateErr != nil {
		r.logger.Error("failed to record ranking error",
			zap.String("ranking_id", rankingID.String()),
			zap.Error(updateErr),
		)
	}
}
