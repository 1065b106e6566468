package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recruitforge/hiring-engine/internal/models"
)

// SessionRepository is the persistence collaborator for screening sessions.
// The store is the source of truth for session existence and state; the
// screening service issues these as commands.
type SessionRepository interface {
	Create(session *models.ScreeningSession) error
	FindByID(id uuid.UUID) (*models.ScreeningSession, error)
	FindByJobAndCandidate(jobID, candidateID uuid.UUID) (*models.ScreeningSession, error)
	AppendResponse(id uuid.UUID, response models.Response) error
	MarkCompleted(id uuid.UUID, overallScore float64, completedAt time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.ScreeningSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create screening session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	var session models.ScreeningSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find screening session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) FindByJobAndCandidate(jobID, candidateID uuid.UUID) (*models.ScreeningSession, error) {
	var session models.ScreeningSession
	err := r.db.Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("screening session for job %s and candidate %s: %w",
				jobID, candidateID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find screening session: %w", err)
	}
	return &session, nil
}

// AppendResponse adds one response to the session's ordered response list.
// The read-modify-write runs inside a transaction so concurrent submissions
// to the same session cannot drop each other's responses.
func (r *sessionRepository) AppendResponse(id uuid.UUID, response models.Response) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var session models.ScreeningSession
		if err := tx.Where("id = ?", id).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("failed to load screening session: %w", err)
		}

		session.Responses = append(session.Responses, response)
		session.Status = models.SessionInProgress

		if err := tx.Model(&session).
			Select("responses", "status").
			Updates(&session).Error; err != nil {
			return fmt.Errorf("failed to append response: %w", err)
		}
		return nil
	})
}

func (r *sessionRepository) MarkCompleted(id uuid.UUID, overallScore float64, completedAt time.Time) error {
	result := r.db.Model(&models.ScreeningSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.SessionCompleted,
			"overall_score": overallScore,
			"completed_at":  completedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark session completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
	}
	return nil
}
