package models

import (
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionTechnical      QuestionType = "technical"
	QuestionBehavioral     QuestionType = "behavioral"
	QuestionSituational    QuestionType = "situational"
	QuestionDomainSpecific QuestionType = "domain_specific"
)

func DefaultQuestionTypes() []QuestionType {
	return []QuestionType{QuestionTechnical, QuestionBehavioral, QuestionSituational}
}

// Question is created once at session start and is immutable thereafter.
type Question struct {
	ID                 int          `json:"id"`
	Type               QuestionType `json:"type"`
	Text               string       `json:"question"`
	ExpectedSkills     []string     `json:"expected_skills"`
	EvaluationCriteria string       `json:"evaluation_criteria"`
	Difficulty         string       `json:"difficulty"`
	MaxScore           float64      `json:"max_score"`
}

// ResponseEvaluation is the structured evaluation of one submitted answer.
type ResponseEvaluation struct {
	Score                float64  `json:"score"`
	Feedback             string   `json:"feedback"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	Suggestions          []string `json:"suggestions"`
	TechnicalAccuracy    float64  `json:"technical_accuracy"`
	CommunicationClarity float64  `json:"communication_clarity"`
	Relevance            float64  `json:"relevance"`
	OverallAssessment    string   `json:"overall_assessment"`
	// RequiresManualReview is set when the evaluation came from the
	// length-based heuristic instead of a provider.
	RequiresManualReview bool `json:"requires_manual_review,omitempty"`
}

type Response struct {
	QuestionID  int                `json:"question_id"`
	Text        string             `json:"text"`
	Evaluation  ResponseEvaluation `json:"evaluation"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// ScreeningSession tracks one question/answer exchange for a (job, candidate)
// pair. Status only ever moves forward: created -> in_progress -> completed.
type ScreeningSession struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	JobID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"job_id"`
	CandidateID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Questions    []Question    `gorm:"serializer:json" json:"questions"`
	Responses    []Response    `gorm:"serializer:json" json:"responses"`
	Status       SessionStatus `gorm:"not null;default:'created'" json:"status"`
	OverallScore *float64      `gorm:"type:decimal(5,2)" json:"overall_score,omitempty"`
	CreatedAt    time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

func (ScreeningSession) TableName() string {
	return "screening_sessions"
}

func (s *ScreeningSession) QuestionByID(id int) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (s *ScreeningSession) HasResponse(questionID int) bool {
	for _, r := range s.Responses {
		if r.QuestionID == questionID {
			return true
		}
	}
	return false
}
