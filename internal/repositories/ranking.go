package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitforge/hiring-engine/internal/models"
)

type RankingRepository interface {
	Create(job *models.RankingJob) error
	FindByID(id uuid.UUID) (*models.RankingJob, error)
	UpdateStatus(id uuid.UUID, status models.RankingStatus) error
	UpdateResults(id uuid.UUID, results []models.RankedCandidate) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.RankingJob, error)
}

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) Create(job *models.RankingJob) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create ranking job: %w", err)
	}
	return nil
}

func (r *rankingRepository) FindByID(id uuid.UUID) (*models.RankingJob, error) {
	var job models.RankingJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ranking job %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find ranking job: %w", err)
	}
	return &job, nil
}

func (r *rankingRepository) UpdateStatus(id uuid.UUID, status models.RankingStatus) error {
	result := r.db.Model(&models.RankingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update ranking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ranking job %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *rankingRepository) UpdateResults(id uuid.UUID, results []models.RankedCandidate) error {
	var job models.RankingJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ranking job %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("failed to load ranking job: %w", err)
	}

	job.Results = results
	job.Status = models.RankingCompleted
	job.UpdatedAt = time.Now()

	if err := r.db.Model(&job).
		Select("results", "status", "updated_at").
		Updates(&job).Error; err != nil {
		return fmt.Errorf("failed to save ranking results: %w", err)
	}
	return nil
}

func (r *rankingRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.RankingJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.RankingFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to record ranking error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ranking job %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *rankingRepository) FindPendingJobs(limit int) ([]models.RankingJob, error) {
	var jobs []models.RankingJob
	if err := r.db.Where("status = ?", models.RankingQueued).
		Order("created_at").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find pending ranking jobs: %w", err)
	}
	return jobs, nil
}
