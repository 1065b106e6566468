package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
	"recruitforge/hiring-engine/internal/repositories"
)

const (
	minQuestions      = 3
	maxQuestions      = 15
	minResponseLength = 10
	maxResponseLength = 2000

	// Estimated answer time per question, used for the duration hint.
	minutesPerQuestion = 3
)

// ScreeningService drives one structured interview-style exchange from
// question generation through final scoring. Session rows are owned by the
// persistence layer; this service issues commands against it and never
// caches sessions in memory.
type ScreeningService interface {
	Start(ctx context.Context, jobID, candidateID uuid.UUID, numQuestions int, types []models.QuestionType) (*models.StartScreeningResponse, error)
	SubmitResponse(ctx context.Context, sessionID uuid.UUID, questionID int, text string) (*models.SubmitResponseResponse, error)
	Summary(ctx context.Context, sessionID uuid.UUID) (*models.SessionSummary, error)
}

type screeningService struct {
	gateway    Gateway
	sessions   repositories.SessionRepository
	jobs       repositories.JobRepository
	candidates repositories.CandidateRepository
	prompts    *PromptBuilder
	logger     *zap.Logger
}

func NewScreeningService(
	gateway Gateway,
	sessions repositories.SessionRepository,
	jobs repositories.JobRepository,
	candidates repositories.CandidateRepository,
	logger *zap.Logger,
) ScreeningService {
	return &screeningService{
		gateway:    gateway,
		sessions:   sessions,
		jobs:       jobs,
		candidates: candidates,
		prompts:    NewPromptBuilder(),
		logger:     logger,
	}
}

// Start implements ScreeningService. The created -> in_progress transition
// happens atomically with question generation: the session is only
// persisted once its question list is fixed.
func (s *screeningService) Start(
	ctx context.Context,
	jobID, candidateID uuid.UUID,
	numQuestions int,
	types []models.QuestionType,
) (*models.StartScreeningResponse, error) {
	if numQuestions < minQuestions || numQuestions > maxQuestions {
		return nil, models.NewValidationError("num_questions",
			fmt.Sprintf("must be between %d and %d", minQuestions, maxQuestions))
	}
	if len(types) == 0 {
		types = models.DefaultQuestionTypes()
	}

	job, err := s.jobs.FindByID(jobID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidates.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.sessions.FindByJobAndCandidate(jobID, candidateID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("screening session %s already exists for job %s and candidate %s: %w",
			existing.ID, jobID, candidateID, models.ErrConflict)
	}

	questions, source := s.generateQuestions(ctx, job, candidate, numQuestions, types)

	session := &models.ScreeningSession{
		ID:          uuid.New(),
		JobID:       jobID,
		CandidateID: candidateID,
		Questions:   questions,
		Responses:   []models.Response{},
		Status:      models.SessionInProgress,
		CreatedAt:   time.Now(),
	}

	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	s.logger.Info("screening session started",
		zap.String("session_id", session.ID.String()),
		zap.String("job_id", jobID.String()),
		zap.String("candidate_id", candidateID.String()),
		zap.Int("questions", len(questions)),
		zap.String("source", string(source)),
	)

	return &models.StartScreeningResponse{
		SessionID:        session.ID.String(),
		Status:           session.Status,
		Questions:        questions,
		Source:           source,
		EstimatedMinutes: minutesPerQuestion * len(questions),
	}, nil
}

// generateQuestions asks the gateway once and falls back to deterministic
// templates on any failure. The fallback never re-enters the gateway.
func (s *screeningService) generateQuestions(
	ctx context.Context,
	job *models.Job,
	candidate *models.Candidate,
	numQuestions int,
	types []models.QuestionType,
) ([]models.Question, models.GenerationSource) {
	prompt := s.prompts.BuildQuestionGenerationPrompt(job, candidate, numQuestions, types)

	result, err := s.gateway.Generate(ctx, prompt, models.GenerationOptions{
		Temperature:    0.7,
		MaxTokens:      2048,
		ResponseFormat: "json",
	})
	if err != nil {
		s.logger.Warn("question generation unavailable, using templates",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return FallbackQuestions(candidate, numQuestions, types), models.SourceFallback
	}

	raw, ok := ExtractCandidateJSON(result.Content)
	if !ok {
		s.logger.Warn("question generation returned no JSON, using templates",
			zap.String("provider", result.Provider),
		)
		return FallbackQuestions(candidate, numQuestions, types), models.SourceFallback
	}

	questions, err := ParseQuestions(raw, numQuestions, types)
	if err != nil {
		s.logger.Warn("question generation returned invalid schema, using templates",
			zap.String("provider", result.Provider),
			zap.Error(err),
		)
		return FallbackQuestions(candidate, numQuestions, types), models.SourceFallback
	}

	return questions, models.SourceGenerated
}

// SubmitResponse implements ScreeningService.
func (s *screeningService) SubmitResponse(
	ctx context.Context,
	sessionID uuid.UUID,
	questionID int,
	text string,
) (*models.SubmitResponseResponse, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionCompleted {
		return nil, fmt.Errorf("screening session %s is already completed: %w", sessionID, models.ErrConflict)
	}
	if session.Status != models.SessionInProgress {
		return nil, fmt.Errorf("screening session %s is not accepting responses: %w", sessionID, models.ErrConflict)
	}

	question, ok := session.QuestionByID(questionID)
	if !ok {
		return nil, fmt.Errorf("question %d in session %s: %w", questionID, sessionID, models.ErrNotFound)
	}
	if session.HasResponse(questionID) {
		return nil, fmt.Errorf("question %d already answered in session %s: %w", questionID, sessionID, models.ErrConflict)
	}

	if length := utf8.RuneCountInString(text); length < minResponseLength || length > maxResponseLength {
		return nil, models.NewValidationError("text",
			fmt.Sprintf("length must be between %d and %d characters", minResponseLength, maxResponseLength))
	}

	evaluation, source := s.evaluateResponse(ctx, question, text)

	response := models.Response{
		QuestionID:  questionID,
		Text:        text,
		Evaluation:  evaluation,
		SubmittedAt: time.Now(),
	}

	if err := s.sessions.AppendResponse(sessionID, response); err != nil {
		return nil, err
	}

	answered := len(session.Responses) + 1
	total := len(session.Questions)
	completed := answered == total

	if completed {
		completedAt := time.Now()
		overall := finalScore(append(session.Responses, response), session.Questions)
		if err := s.sessions.MarkCompleted(sessionID, overall, completedAt); err != nil {
			return nil, err
		}

		s.logger.Info("screening session completed",
			zap.String("session_id", sessionID.String()),
			zap.Float64("overall_score", overall),
		)
	}

	return &models.SubmitResponseResponse{
		Evaluation: evaluation,
		Source:     source,
		Progress:   fmt.Sprintf("%d/%d", answered, total),
		Completed:  completed,
	}, nil
}

// evaluateResponse asks the gateway for a structured evaluation and falls
// back to the length heuristic on any failure.
func (s *screeningService) evaluateResponse(
	ctx context.Context,
	question models.Question,
	text string,
) (models.ResponseEvaluation, models.GenerationSource) {
	prompt := s.prompts.BuildResponseEvaluationPrompt(question, text)

	result, err := s.gateway.Generate(ctx, prompt, models.GenerationOptions{
		Temperature:    0.3,
		MaxTokens:      1024,
		ResponseFormat: "json",
	})
	if err != nil {
		s.logger.Warn("response evaluation unavailable, using heuristic",
			zap.Int("question_id", question.ID),
			zap.Error(err),
		)
		return HeuristicEvaluation(text, question.MaxScore), models.SourceFallback
	}

	raw, ok := ExtractCandidateJSON(result.Content)
	if !ok {
		s.logger.Warn("response evaluation returned no JSON, using heuristic",
			zap.String("provider", result.Provider),
		)
		return HeuristicEvaluation(text, question.MaxScore), models.SourceFallback
	}

	evaluation, err := ParseEvaluation(raw, question.MaxScore)
	if err != nil {
		s.logger.Warn("response evaluation returned invalid schema, using heuristic",
			zap.String("provider", result.Provider),
			zap.Error(err),
		)
		return HeuristicEvaluation(text, question.MaxScore), models.SourceFallback
	}

	return evaluation, models.SourceGenerated
}

// finalScore is the percentage of earned points over available points,
// rounded to two decimals.
func finalScore(responses []models.Response, questions []models.Question) float64 {
	var earned, available float64
	for _, q := range questions {
		available += q.MaxScore
	}
	for _, r := range responses {
		earned += r.Evaluation.Score
	}
	if available == 0 {
		return 0
	}
	return math.Round(earned/available*100*100) / 100
}

// Summary implements ScreeningService.
func (s *screeningService) Summary(ctx context.Context, sessionID uuid.UUID) (*models.SessionSummary, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}

	summary := &models.SessionSummary{
		SessionID:      session.ID.String(),
		JobID:          session.JobID.String(),
		CandidateID:    session.CandidateID.String(),
		Status:         session.Status,
		Answered:       len(session.Responses),
		TotalQuestions: len(session.Questions),
		OverallScore:   session.OverallScore,
		Recommendation: recommendation(session),
	}

	if session.CompletedAt != nil {
		minutes := session.CompletedAt.Sub(session.CreatedAt).Minutes()
		summary.DurationMinutes = &minutes
	}

	return summary, nil
}

func recommendation(session *models.ScreeningSession) string {
	if session.Status != models.SessionCompleted || session.OverallScore == nil {
		return "Screening still in progress; no recommendation yet."
	}

	score := *session.OverallScore
	switch {
	case score >= 80:
		return "Strong candidate. Recommend advancing to the next interview round."
	case score >= 65:
		return "Good candidate. Worth a follow-up interview."
	case score >= 50:
		return "Average screening performance. Consider against the rest of the pipeline."
	default:
		return "Below the screening threshold. Not recommended for this role."
	}
}
