package services

import (
	"fmt"
	"strings"

	"recruitforge/hiring-engine/internal/models"
)

// Deterministic question templates keyed by question type. The %s slot is
// filled with one of the candidate's own skills so fallback sessions still
// probe something the candidate claims to know.
var fallbackTemplates = map[models.QuestionType]struct {
	text     string
	criteria string
}{
	models.QuestionTechnical: {
		text:     "Describe a project where you used %s in production. What design decisions did you make and what would you change today?",
		criteria: "Looks for concrete hands-on experience with %s, clear reasoning about trade-offs, and honest reflection on mistakes.",
	},
	models.QuestionBehavioral: {
		text:     "Tell us about a time you had to get up to speed with %s under a tight deadline. How did you approach it?",
		criteria: "Looks for a structured learning approach, prioritization under pressure, and outcome awareness around %s.",
	},
	models.QuestionSituational: {
		text:     "A production incident is traced to a component built with %s that you did not write. Walk us through your first hour.",
		criteria: "Looks for systematic debugging, communication with the team, and practical familiarity with %s.",
	},
	models.QuestionDomainSpecific: {
		text:     "How would you explain the role of %s in this team's domain to a new colleague, and where are its limits?",
		criteria: "Looks for depth of domain understanding around %s and the ability to communicate it simply.",
	},
}

// FallbackQuestions manufactures a deterministic question set from the
// candidate's skill list. It has no external dependency and is used
// whenever provider generation fails or returns unusable JSON.
func FallbackQuestions(candidate *models.Candidate, numQuestions int, types []models.QuestionType) []models.Question {
	skills := make([]string, 0, len(candidate.Skills))
	for _, s := range candidate.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		skills = []string{"your strongest technical skill"}
	}

	questions := make([]models.Question, 0, numQuestions)
	for i := 0; i < numQuestions; i++ {
		questionType := types[i%len(types)]
		skill := skills[i%len(skills)]
		template := fallbackTemplates[questionType]

		questions = append(questions, models.Question{
			ID:                 i + 1,
			Type:               questionType,
			Text:               fmt.Sprintf(template.text, skill),
			ExpectedSkills:     []string{skill},
			EvaluationCriteria: fmt.Sprintf(template.criteria, skill),
			Difficulty:         "medium",
			MaxScore:           10,
		})
	}

	return questions
}

// HeuristicEvaluation scores a response by length when no provider could
// evaluate it: one point per ten words, capped at the question's maximum.
// The result is tagged for manual review.
func HeuristicEvaluation(text string, maxScore float64) models.ResponseEvaluation {
	wordCount := len(strings.Fields(text))
	score := float64(wordCount / 10)
	if score > maxScore {
		score = maxScore
	}

	return models.ResponseEvaluation{
		Score:                score,
		Feedback:             "Automated evaluation was unavailable. The response was scored on length alone and needs a human reviewer.",
		OverallAssessment:    "pending manual review",
		RequiresManualReview: true,
	}
}
