package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitforge/hiring-engine/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindAll() ([]models.Candidate, error)
	UpdateEmbedding(id uuid.UUID, embedding []float32) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("candidate %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

func (r *candidateRepository) FindAll() ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.Order("created_at").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func (r *candidateRepository) UpdateEmbedding(id uuid.UUID, embedding []float32) error {
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Update("embedding", embedding)
	if result.Error != nil {
		return fmt.Errorf("failed to update candidate embedding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("candidate %s: %w", id, models.ErrNotFound)
	}
	return nil
}
