package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreWeights is the fixed weight vector applied to the match components.
// The weights must sum to exactly 1.0; the scorer validates this once at
// construction time.
type ScoreWeights struct {
	Semantic   float64 `json:"semantic_similarity"`
	Skills     float64 `json:"skills_match"`
	Experience float64 `json:"experience_match"`
	Education  float64 `json:"education_match"`
	Location   float64 `json:"location_match"`
}

func (w ScoreWeights) Sum() float64 {
	return w.Semantic + w.Skills + w.Experience + w.Education + w.Location
}

// MatchScore holds the per-component scores and their weighted overall.
// Every component and the overall lie in [0.0, 1.0]. Computed fresh on
// every call; never cached.
type MatchScore struct {
	SemanticSimilarity float64      `json:"semantic_similarity"`
	SkillsMatch        float64      `json:"skills_match"`
	ExperienceMatch    float64      `json:"experience_match"`
	EducationMatch     float64      `json:"education_match"`
	LocationMatch      float64      `json:"location_match"`
	Weights            ScoreWeights `json:"weights"`
	Overall            float64      `json:"overall"`
}

type RankedCandidate struct {
	CandidateID uuid.UUID  `json:"candidate_id"`
	Score       MatchScore `json:"score"`
	Explanation string     `json:"explanation"`
}

type RankingStatus string

const (
	RankingQueued     RankingStatus = "queued"
	RankingProcessing RankingStatus = "processing"
	RankingCompleted  RankingStatus = "completed"
	RankingFailed     RankingStatus = "failed"
)

// RankingJob is an asynchronous request to rank all stored candidates
// against one job listing.
type RankingJob struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	JobID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"job_id"`
	Limit        int               `gorm:"not null" json:"limit"`
	Status       RankingStatus     `gorm:"not null;default:'queued'" json:"status"`
	Results      []RankedCandidate `gorm:"serializer:json" json:"results,omitempty"`
	ErrorMessage *string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RankingJob) TableName() string {
	return "ranking_jobs"
}
