package models

// GenerationSource tags which path produced questions or an evaluation, so
// callers can tell a provider-generated result from the deterministic
// fallback without log scraping.
type GenerationSource string

const (
	SourceGenerated GenerationSource = "generated"
	SourceFallback  GenerationSource = "fallback"
)

type StartScreeningRequest struct {
	JobID         string   `json:"job_id" validate:"required,uuid"`
	CandidateID   string   `json:"candidate_id" validate:"required,uuid"`
	NumQuestions  int      `json:"num_questions"`
	QuestionTypes []string `json:"question_types,omitempty"`
}

type StartScreeningResponse struct {
	SessionID        string           `json:"session_id"`
	Status           SessionStatus    `json:"status"`
	Questions        []Question       `json:"questions"`
	Source           GenerationSource `json:"source"`
	EstimatedMinutes int              `json:"estimated_duration_minutes"`
}

type SubmitResponseRequest struct {
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
}

type SubmitResponseResponse struct {
	Evaluation ResponseEvaluation `json:"evaluation"`
	Source     GenerationSource   `json:"source"`
	Progress   string             `json:"progress"`
	Completed  bool               `json:"completed"`
}

type SessionSummary struct {
	SessionID       string        `json:"session_id"`
	JobID           string        `json:"job_id"`
	CandidateID     string        `json:"candidate_id"`
	Status          SessionStatus `json:"status"`
	Answered        int           `json:"answered"`
	TotalQuestions  int           `json:"total_questions"`
	OverallScore    *float64      `json:"overall_score,omitempty"`
	Recommendation  string        `json:"recommendation"`
	DurationMinutes *float64      `json:"duration_minutes,omitempty"`
}

type RankResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type RankingResultResponse struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	Status       RankingStatus     `json:"status"`
	Results      []RankedCandidate `json:"results,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
}

type SimilarCandidate struct {
	CandidateID string  `json:"candidate_id"`
	Similarity  float32 `json:"similarity"`
}
