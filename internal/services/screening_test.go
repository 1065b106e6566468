package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
)

// stubGateway replays a scripted sequence of generation results. Each call
// consumes one reply; an exhausted script fails the call.
type stubGateway struct {
	replies []gatewayReply
	calls   int
}

type gatewayReply struct {
	content string
	err     error
}

func (s *stubGateway) Generate(_ context.Context, _ string, _ models.GenerationOptions) (*models.GenerationResult, error) {
	s.calls++
	if len(s.replies) == 0 {
		return nil, errors.New("stub gateway: no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	if reply.err != nil {
		return nil, reply.err
	}
	return &models.GenerationResult{
		Content:  reply.content,
		Provider: "stub",
		Model:    "stub-model",
	}, nil
}

func (s *stubGateway) HealthCheck(_ context.Context) []models.ProviderHealth {
	return nil
}

type memSessionRepo struct {
	sessions map[uuid.UUID]models.ScreeningSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]models.ScreeningSession)}
}

func (m *memSessionRepo) Create(session *models.ScreeningSession) error {
	m.sessions[session.ID] = *session
	return nil
}

func (m *memSessionRepo) FindByID(id uuid.UUID) (*models.ScreeningSession, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
	}
	return &session, nil
}

func (m *memSessionRepo) FindByJobAndCandidate(jobID, candidateID uuid.UUID) (*models.ScreeningSession, error) {
	for _, session := range m.sessions {
		if session.JobID == jobID && session.CandidateID == candidateID {
			found := session
			return &found, nil
		}
	}
	return nil, fmt.Errorf("screening session for job %s and candidate %s: %w", jobID, candidateID, models.ErrNotFound)
}

func (m *memSessionRepo) AppendResponse(id uuid.UUID, response models.Response) error {
	session, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
	}
	session.Responses = append(session.Responses, response)
	session.Status = models.SessionInProgress
	m.sessions[id] = session
	return nil
}

func (m *memSessionRepo) MarkCompleted(id uuid.UUID, overallScore float64, completedAt time.Time) error {
	session, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("screening session %s: %w", id, models.ErrNotFound)
	}
	session.Status = models.SessionCompleted
	session.OverallScore = &overallScore
	session.CompletedAt = &completedAt
	m.sessions[id] = session
	return nil
}

type memJobRepo struct {
	jobs map[uuid.UUID]models.Job
}

func (m *memJobRepo) Create(job *models.Job) error {
	m.jobs[job.ID] = *job
	return nil
}

func (m *memJobRepo) FindByID(id uuid.UUID) (*models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	return &job, nil
}

func (m *memJobRepo) UpdateEmbedding(id uuid.UUID, embedding []float32) error {
	job, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, models.ErrNotFound)
	}
	job.Embedding = embedding
	m.jobs[id] = job
	return nil
}

type memCandidateRepo struct {
	candidates map[uuid.UUID]models.Candidate
}

func (m *memCandidateRepo) Create(candidate *models.Candidate) error {
	m.candidates[candidate.ID] = *candidate
	return nil
}

func (m *memCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	candidate, ok := m.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, models.ErrNotFound)
	}
	return &candidate, nil
}

func (m *memCandidateRepo) FindAll() ([]models.Candidate, error) {
	all := make([]models.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		all = append(all, c)
	}
	return all, nil
}

func (m *memCandidateRepo) UpdateEmbedding(id uuid.UUID, embedding []float32) error {
	candidate, ok := m.candidates[id]
	if !ok {
		return fmt.Errorf("candidate %s: %w", id, models.ErrNotFound)
	}
	candidate.Embedding = embedding
	m.candidates[id] = candidate
	return nil
}

type screeningFixture struct {
	service     ScreeningService
	gateway     *stubGateway
	sessions    *memSessionRepo
	jobID       uuid.UUID
	candidateID uuid.UUID
}

func newScreeningFixture(t *testing.T, gateway *stubGateway) *screeningFixture {
	t.Helper()

	job := models.Job{
		ID:             uuid.New(),
		Title:          "Backend Engineer",
		Description:    "Build and operate Go services.",
		RequiredSkills: []string{"Go", "Postgres"},
	}
	candidate := models.Candidate{
		ID:     uuid.New(),
		Name:   "Sam",
		Skills: []string{"Go", "Docker", "Kubernetes"},
	}

	sessions := newMemSessionRepo()
	jobs := &memJobRepo{jobs: map[uuid.UUID]models.Job{job.ID: job}}
	candidates := &memCandidateRepo{candidates: map[uuid.UUID]models.Candidate{candidate.ID: candidate}}

	return &screeningFixture{
		service:     NewScreeningService(gateway, sessions, jobs, candidates, zap.NewNop()),
		gateway:     gateway,
		sessions:    sessions,
		jobID:       job.ID,
		candidateID: candidate.ID,
	}
}

func questionSetJSON(n int) string {
	var sb strings.Builder
	sb.WriteString(`{"questions":[`)
	for i := 1; i <= n; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb,
			`{"id":%d,"type":"technical","question":"Question %d about Go?","expected_skills":["Go"],"evaluation_criteria":"Depth","difficulty":"medium","max_score":10}`,
			i, i)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

func evaluationJSON(score float64) string {
	return fmt.Sprintf(`{"score":%v,"feedback":"Solid answer.","strengths":["clear"],"weaknesses":[],"overall_assessment":"good"}`, score)
}

const validResponseText = "I designed the service around a worker pool and measured throughput before tuning."

func TestStartScreeningGeneratesQuestions(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{content: questionSetJSON(3)}}}
	fx := newScreeningFixture(t, gateway)

	result, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != models.SourceGenerated {
		t.Fatalf("expected generated questions, got %s", result.Source)
	}
	if result.Status != models.SessionInProgress {
		t.Fatalf("expected in_progress, got %s", result.Status)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
	if result.EstimatedMinutes != 9 {
		t.Fatalf("expected 9 estimated minutes, got %d", result.EstimatedMinutes)
	}
}

func TestStartScreeningFallsBackOnProviderFailure(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{err: errors.New("all providers exhausted")}}}
	fx := newScreeningFixture(t, gateway)

	result, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != models.SourceFallback {
		t.Fatalf("expected fallback questions, got %s", result.Source)
	}
	if len(result.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(result.Questions))
	}

	// Fallback questions are built from the candidate's own skills.
	if !strings.Contains(result.Questions[0].Text, "Go") {
		t.Fatalf("expected first fallback question to reference a candidate skill, got: %s", result.Questions[0].Text)
	}
}

func TestStartScreeningFallsBackOnUnusableJSON(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{content: "Sorry, I cannot produce questions right now."}}}
	fx := newScreeningFixture(t, gateway)

	result, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != models.SourceFallback {
		t.Fatalf("expected fallback questions, got %s", result.Source)
	}
}

func TestStartScreeningFallsBackOnShortQuestionSet(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{content: questionSetJSON(2)}}}
	fx := newScreeningFixture(t, gateway)

	result, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A provider that under-delivers must not shrink the session; the
	// templates always fill the full request.
	if result.Source != models.SourceFallback {
		t.Fatalf("expected fallback questions, got %s", result.Source)
	}
	if len(result.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(result.Questions))
	}
}

func TestStartScreeningValidatesQuestionCount(t *testing.T) {
	for _, n := range []int{0, 2, 16} {
		gateway := &stubGateway{}
		fx := newScreeningFixture(t, gateway)

		_, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, n, nil)

		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("num_questions=%d: expected ValidationError, got %T: %v", n, err, err)
		}
		if gateway.calls != 0 {
			t.Fatalf("num_questions=%d: expected no gateway call, got %d", n, gateway.calls)
		}
	}
}

func TestStartScreeningRejectsDuplicateSession(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{
		{content: questionSetJSON(3)},
		{content: questionSetJSON(3)},
	}}
	fx := newScreeningFixture(t, gateway)

	if _, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for duplicate session, got %v", err)
	}
}

func TestStartScreeningUnknownJob(t *testing.T) {
	fx := newScreeningFixture(t, &stubGateway{})

	_, err := fx.service.Start(context.Background(), uuid.New(), fx.candidateID, 3, nil)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitResponseLifecycle(t *testing.T) {
	scores := []float64{8, 6, 7, 9, 5}

	replies := []gatewayReply{{content: questionSetJSON(5)}}
	for _, score := range scores {
		replies = append(replies, gatewayReply{content: evaluationJSON(score)})
	}
	gateway := &stubGateway{replies: replies}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessionID := uuid.MustParse(started.SessionID)

	for i, score := range scores {
		result, err := fx.service.SubmitResponse(context.Background(), sessionID, i+1, validResponseText)
		if err != nil {
			t.Fatalf("unexpected error on response %d: %v", i+1, err)
		}

		if result.Evaluation.Score != score {
			t.Fatalf("response %d: expected score %v, got %v", i+1, score, result.Evaluation.Score)
		}
		if result.Source != models.SourceGenerated {
			t.Fatalf("response %d: expected generated evaluation, got %s", i+1, result.Source)
		}

		wantProgress := fmt.Sprintf("%d/5", i+1)
		if result.Progress != wantProgress {
			t.Fatalf("response %d: expected progress %s, got %s", i+1, wantProgress, result.Progress)
		}

		wantCompleted := i == len(scores)-1
		if result.Completed != wantCompleted {
			t.Fatalf("response %d: expected completed=%v", i+1, wantCompleted)
		}
	}

	// (8+6+7+9+5) / 50 = 70%
	summary, err := fx.service.Summary(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Status != models.SessionCompleted {
		t.Fatalf("expected completed session, got %s", summary.Status)
	}
	if summary.OverallScore == nil || *summary.OverallScore != 70.0 {
		t.Fatalf("expected overall score 70.0, got %v", summary.OverallScore)
	}
	if summary.Answered != 5 || summary.TotalQuestions != 5 {
		t.Fatalf("expected 5/5 answered, got %d/%d", summary.Answered, summary.TotalQuestions)
	}
	if !strings.Contains(summary.Recommendation, "follow-up interview") {
		t.Fatalf("expected a follow-up recommendation at 70%%, got: %s", summary.Recommendation)
	}
	if summary.DurationMinutes == nil {
		t.Fatalf("expected a duration on a completed session")
	}
}

func TestSubmitResponseValidatesTextLength(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{content: questionSetJSON(3)}}}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessionID := uuid.MustParse(started.SessionID)

	for _, text := range []string{"too short", strings.Repeat("a", 2001)} {
		_, err := fx.service.SubmitResponse(context.Background(), sessionID, 1, text)

		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError for %d-rune response, got %T: %v", len([]rune(text)), err, err)
		}
	}
}

func TestSubmitResponseUnknownQuestion(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{{content: questionSetJSON(3)}}}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = fx.service.SubmitResponse(context.Background(), uuid.MustParse(started.SessionID), 42, validResponseText)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found for unknown question, got %v", err)
	}
}

func TestSubmitResponseRejectsDuplicateAnswer(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{
		{content: questionSetJSON(3)},
		{content: evaluationJSON(8)},
	}}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessionID := uuid.MustParse(started.SessionID)

	if _, err := fx.service.SubmitResponse(context.Background(), sessionID, 1, validResponseText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = fx.service.SubmitResponse(context.Background(), sessionID, 1, validResponseText)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for duplicate answer, got %v", err)
	}
}

func TestSubmitResponseRejectsCompletedSession(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{
		{content: questionSetJSON(3)},
		{content: evaluationJSON(8)},
		{content: evaluationJSON(7)},
		{content: evaluationJSON(9)},
	}}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sessionID := uuid.MustParse(started.SessionID)

	for i := 1; i <= 3; i++ {
		if _, err := fx.service.SubmitResponse(context.Background(), sessionID, i, validResponseText); err != nil {
			t.Fatalf("unexpected error on response %d: %v", i, err)
		}
	}

	_, err = fx.service.SubmitResponse(context.Background(), sessionID, 1, validResponseText)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict on a completed session, got %v", err)
	}
}

func TestSubmitResponseHeuristicFallback(t *testing.T) {
	gateway := &stubGateway{replies: []gatewayReply{
		{content: questionSetJSON(3)},
		{err: errors.New("all providers exhausted")},
	}}
	fx := newScreeningFixture(t, gateway)

	started, err := fx.service.Start(context.Background(), fx.jobID, fx.candidateID, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 20 words scores 2.0 under the one-point-per-ten-words heuristic.
	text := strings.TrimSpace(strings.Repeat("word ", 20))
	result, err := fx.service.SubmitResponse(context.Background(), uuid.MustParse(started.SessionID), 1, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Source != models.SourceFallback {
		t.Fatalf("expected fallback evaluation, got %s", result.Source)
	}
	if !result.Evaluation.RequiresManualReview {
		t.Fatalf("expected heuristic evaluation to be flagged for manual review")
	}
	if result.Evaluation.Score != 2.0 {
		t.Fatalf("expected heuristic score 2.0, got %v", result.Evaluation.Score)
	}
}
