package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/models"
)

// Weight of each match component. The sum must be exactly 1.0; the
// constructor enforces it once so per-call scoring can trust the invariant.
var defaultScoreWeights = models.ScoreWeights{
	Semantic:   0.35,
	Skills:     0.30,
	Experience: 0.20,
	Education:  0.10,
	Location:   0.05,
}

const weightSumTolerance = 1e-9

// MatchScorer produces a reproducible, explainable ranking score for a
// (candidate, job) pair. It holds no mutable state: identical inputs always
// produce an identical MatchScore.
type MatchScorer interface {
	Score(ctx context.Context, candidate *models.Candidate, job *models.Job) models.MatchScore
	Rank(ctx context.Context, job *models.Job, candidates []models.Candidate, limit int) []models.RankedCandidate
}

type matchScorer struct {
	embedder EmbeddingService
	index    VectorIndexService // optional cache; may be nil
	weights  models.ScoreWeights
	logger   *zap.Logger
}

func NewMatchScorer(embedder EmbeddingService, index VectorIndexService, logger *zap.Logger) (MatchScorer, error) {
	weights := defaultScoreWeights
	if math.Abs(weights.Sum()-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("score weights must sum to 1.0, got %v", weights.Sum())
	}

	return &matchScorer{
		embedder: embedder,
		index:    index,
		weights:  weights,
		logger:   logger,
	}, nil
}

// Score implements MatchScorer. Missing sub-fields never fail the call;
// they degrade to the documented neutral values.
func (m *matchScorer) Score(ctx context.Context, candidate *models.Candidate, job *models.Job) models.MatchScore {
	score := models.MatchScore{
		SemanticSimilarity: m.semanticSimilarity(ctx, candidate, job),
		SkillsMatch:        skillsMatch(candidate.Skills, job.RequiredSkills),
		ExperienceMatch:    experienceMatch(candidate.YearsExperience, job.RequiredYears),
		EducationMatch:     educationMatch(candidate.Education, job.RequiredEducation),
		LocationMatch:      locationMatch(candidate.Location, job.Locations),
		Weights:            m.weights,
	}

	score.Overall = score.SemanticSimilarity*m.weights.Semantic +
		score.SkillsMatch*m.weights.Skills +
		score.ExperienceMatch*m.weights.Experience +
		score.EducationMatch*m.weights.Education +
		score.LocationMatch*m.weights.Location

	return score
}

// Rank implements MatchScorer. Results are ordered by overall score
// descending with ties broken by candidate id ascending, then truncated to
// limit.
func (m *matchScorer) Rank(ctx context.Context, job *models.Job, candidates []models.Candidate, limit int) []models.RankedCandidate {
	ranked := make([]models.RankedCandidate, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		score := m.Score(ctx, candidate, job)
		ranked = append(ranked, models.RankedCandidate{
			CandidateID: candidate.ID,
			Score:       score,
			Explanation: explainScore(score),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score.Overall != ranked[j].Score.Overall {
			return ranked[i].Score.Overall > ranked[j].Score.Overall
		}
		return ranked[i].CandidateID.String() < ranked[j].CandidateID.String()
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// semanticSimilarity compares the candidate's resume/skills embedding with
// the job's description embedding. Pre-computed vectors on the entities are
// used as-is; otherwise the embedder is asked and the fresh vector is
// cached in the index on a best-effort basis. Embedding failures degrade
// the component to 0.0 instead of failing the score.
func (m *matchScorer) semanticSimilarity(ctx context.Context, candidate *models.Candidate, job *models.Job) float64 {
	jobVec := job.Embedding
	if len(jobVec) == 0 {
		var err error
		jobVec, err = m.embedder.Embed(ctx, job.EmbeddingText())
		if err != nil {
			m.logger.Warn("failed to embed job description",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
			return 0.0
		}
		m.cacheEmbedding(ctx, "job", job, nil, jobVec)
	}

	candidateVec := candidate.Embedding
	if len(candidateVec) == 0 {
		var err error
		candidateVec, err = m.embedder.Embed(ctx, candidate.EmbeddingText())
		if err != nil {
			m.logger.Warn("failed to embed candidate resume",
				zap.String("candidate_id", candidate.ID.String()),
				zap.Error(err),
			)
			return 0.0
		}
		m.cacheEmbedding(ctx, "candidate", nil, candidate, candidateVec)
	}

	return clamp01(cosineSimilarity(candidateVec, jobVec))
}

func (m *matchScorer) cacheEmbedding(ctx context.Context, kind string, job *models.Job, candidate *models.Candidate, vector []float32) {
	if m.index == nil {
		return
	}

	var err error
	switch kind {
	case "job":
		job.Embedding = vector
		err = m.index.UpsertEmbedding(ctx, kind, job.ID, vector)
	case "candidate":
		candidate.Embedding = vector
		err = m.index.UpsertEmbedding(ctx, kind, candidate.ID, vector)
	}
	if err != nil {
		m.logger.Warn("failed to cache embedding", zap.String("kind", kind), zap.Error(err))
	}
}

// cosineSimilarity is (a·b)/(‖a‖‖b‖), defined as 0.0 when either norm is
// zero.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	for i := n; i < len(a); i++ {
		normA += float64(a[i]) * float64(a[i])
	}
	for i := n; i < len(b); i++ {
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func skillsMatch(candidateSkills, requiredSkills []string) float64 {
	if len(candidateSkills) == 0 || len(requiredSkills) == 0 {
		return 0.0
	}

	candidateSet := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		candidateSet[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	requiredSet := make(map[string]struct{}, len(requiredSkills))
	for _, s := range requiredSkills {
		requiredSet[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	matched := 0
	for s := range requiredSet {
		if _, ok := candidateSet[s]; ok {
			matched++
		}
	}

	return clamp01(float64(matched) / float64(len(requiredSet)))
}

func experienceMatch(candidateYears float64, requiredYears *float64) float64 {
	if requiredYears == nil || *requiredYears <= 0 {
		return 0.5
	}
	if candidateYears >= *requiredYears {
		return 1.0
	}
	return clamp01(candidateYears / *requiredYears)
}

var educationLevels = []struct {
	keyword string
	level   int
}{
	{"phd", 5},
	{"doctor", 5},
	{"master", 4},
	{"bachelor", 3},
	{"diploma", 2},
	{"high school", 1},
}

func educationLevel(education string) int {
	lower := strings.ToLower(education)
	for _, e := range educationLevels {
		if strings.Contains(lower, e.keyword) {
			return e.level
		}
	}
	return 1
}

func educationMatch(candidateEducation, requiredEducation string) float64 {
	if strings.TrimSpace(candidateEducation) == "" || strings.TrimSpace(requiredEducation) == "" {
		return 0.5
	}

	candidateLevel := educationLevel(candidateEducation)
	requiredLevel := educationLevel(requiredEducation)
	if candidateLevel >= requiredLevel {
		return 1.0
	}
	return float64(candidateLevel) / float64(requiredLevel)
}

func locationMatch(candidateLocation string, requiredLocations []string) float64 {
	if strings.TrimSpace(candidateLocation) == "" || len(requiredLocations) == 0 {
		return 0.5
	}

	lower := strings.ToLower(candidateLocation)
	for _, required := range requiredLocations {
		required = strings.ToLower(strings.TrimSpace(required))
		if required != "" && strings.Contains(lower, required) {
			return 1.0
		}
	}
	return 0.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scoreBucket(v float64) string {
	switch {
	case v > 0.7:
		return "strong"
	case v > 0.5:
		return "good"
	default:
		return "limited"
	}
}

func explainScore(score models.MatchScore) string {
	return fmt.Sprintf(
		"%s overall match (%.2f): %s semantic similarity, %s skills coverage, %s experience fit, %s education fit, %s location fit",
		scoreBucket(score.Overall),
		score.Overall,
		scoreBucket(score.SemanticSimilarity),
		scoreBucket(score.SkillsMatch),
		scoreBucket(score.ExperienceMatch),
		scoreBucket(score.EducationMatch),
		scoreBucket(score.LocationMatch),
	)
}
