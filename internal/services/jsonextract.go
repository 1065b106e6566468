package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"recruitforge/hiring-engine/internal/models"
)

// ExtractCandidateJSON pulls the first plausible JSON object out of raw
// model output. Models routinely wrap their JSON in markdown fences or
// prose, so the extraction scans for the first '{' and last '}'. The second
// return value is false when no object boundary exists; callers treat that
// as a fallback trigger, not an error.
func ExtractCandidateJSON(text string) (string, bool) {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

type generatedQuestion struct {
	ID                 int      `json:"id"`
	Type               string   `json:"type"`
	Question           string   `json:"question"`
	ExpectedSkills     []string `json:"expected_skills"`
	EvaluationCriteria string   `json:"evaluation_criteria"`
	Difficulty         string   `json:"difficulty"`
	MaxScore           float64  `json:"max_score"`
}

type generatedQuestionSet struct {
	Questions []generatedQuestion `json:"questions"`
}

// ParseQuestions validates extracted question JSON against the expected
// schema. Missing ids are assigned sequentially; missing types cycle
// through the requested ones; max_score defaults to 10. A set with fewer
// questions than requested, or a question without text, fails the whole
// set so the caller falls back to templates; a longer set is truncated.
func ParseQuestions(raw string, numQuestions int, types []models.QuestionType) ([]models.Question, error) {
	var set generatedQuestionSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("unmarshal question set: %w", err)
	}
	if len(set.Questions) < numQuestions {
		return nil, fmt.Errorf("question set has %d questions, expected %d", len(set.Questions), numQuestions)
	}
	if len(set.Questions) > numQuestions {
		set.Questions = set.Questions[:numQuestions]
	}

	questions := make([]models.Question, 0, len(set.Questions))
	for i, q := range set.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}

		question := models.Question{
			ID:                 q.ID,
			Type:               models.QuestionType(strings.ToLower(strings.TrimSpace(q.Type))),
			Text:               strings.TrimSpace(q.Question),
			ExpectedSkills:     q.ExpectedSkills,
			EvaluationCriteria: q.EvaluationCriteria,
			Difficulty:         q.Difficulty,
			MaxScore:           q.MaxScore,
		}

		if question.ID <= 0 {
			question.ID = i + 1
		}
		if !validQuestionType(question.Type) {
			question.Type = types[i%len(types)]
		}
		if question.Difficulty == "" {
			question.Difficulty = "medium"
		}
		if question.MaxScore <= 0 {
			question.MaxScore = 10
		}

		questions = append(questions, question)
	}

	return questions, nil
}

func validQuestionType(t models.QuestionType) bool {
	switch t {
	case models.QuestionTechnical, models.QuestionBehavioral,
		models.QuestionSituational, models.QuestionDomainSpecific:
		return true
	}
	return false
}

// ParseEvaluation validates extracted evaluation JSON and clamps the score
// into [0, maxScore].
func ParseEvaluation(raw string, maxScore float64) (models.ResponseEvaluation, error) {
	var eval models.ResponseEvaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		return models.ResponseEvaluation{}, fmt.Errorf("unmarshal evaluation: %w", err)
	}
	if strings.TrimSpace(eval.Feedback) == "" && eval.Score == 0 {
		return models.ResponseEvaluation{}, fmt.Errorf("evaluation carries neither score nor feedback")
	}

	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > maxScore {
		eval.Score = maxScore
	}
	eval.RequiresManualReview = false

	return eval, nil
}
