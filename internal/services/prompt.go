package services

import (
	"fmt"
	"strings"

	"recruitforge/hiring-engine/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionGenerationPrompt creates the prompt for screening question
// generation. The response must be strict JSON matching the schema embedded
// in the prompt.
func (pb *PromptBuilder) BuildQuestionGenerationPrompt(
	job *models.Job,
	candidate *models.Candidate,
	numQuestions int,
	types []models.QuestionType,
) string {
	typeNames := make([]string, 0, len(types))
	for _, t := range types {
		typeNames = append(typeNames, string(t))
	}

	requiredYears := "not specified"
	if job.RequiredYears != nil {
		requiredYears = fmt.Sprintf("%.0f years", *job.RequiredYears)
	}

	return fmt.Sprintf(`You are an expert technical interviewer preparing a screening session.

JOB:
- Title: %s
- Description: %s
- Required skills: %s
- Experience level: %s
- Required experience: %s

CANDIDATE:
- Skills: %s
- Education: %s
- Location: %s
- Years of experience: %.1f
- Resume summary: %s

Generate exactly %d screening questions of the following types: %s.
Mix the types across the set and target the candidate's actual background.

Return ONLY a JSON object in this exact format:
{
  "questions": [
    {
      "id": 1,
      "type": "technical",
      "question": "<the question text>",
      "expected_skills": ["<skill>", "..."],
      "evaluation_criteria": "<what a strong answer demonstrates>",
      "difficulty": "easy|medium|hard",
      "max_score": 10
    }
  ]
}

Do not include any text outside the JSON object.`,
		job.Title,
		job.Description,
		strings.Join(job.RequiredSkills, ", "),
		job.ExperienceLevel,
		requiredYears,
		strings.Join(candidate.Skills, ", "),
		candidate.Education,
		candidate.Location,
		candidate.YearsExperience,
		candidate.ResumeSummary,
		numQuestions,
		strings.Join(typeNames, ", "),
	)
}

// BuildResponseEvaluationPrompt creates the prompt for evaluating one
// submitted answer against its question and criteria.
func (pb *PromptBuilder) BuildResponseEvaluationPrompt(question models.Question, responseText string) string {
	return fmt.Sprintf(`You are an expert interviewer evaluating a candidate's answer to a screening question.

QUESTION (%s, difficulty %s, max score %.0f):
%s

EVALUATION CRITERIA:
%s

EXPECTED SKILLS:
%s

CANDIDATE'S ANSWER:
%s

Score the answer from 0 to %.0f and assess it against the criteria.

Return ONLY a JSON object in this exact format:
{
  "score": <0-%.0f>,
  "feedback": "<2-4 sentences of specific feedback>",
  "strengths": ["<strength>", "..."],
  "weaknesses": ["<weakness>", "..."],
  "suggestions": ["<suggestion>", "..."],
  "technical_accuracy": <0-1>,
  "communication_clarity": <0-1>,
  "relevance": <0-1>,
  "overall_assessment": "<one sentence verdict>"
}

Be objective. Reference the answer's actual content to justify the score.`,
		question.Type,
		question.Difficulty,
		question.MaxScore,
		question.Text,
		question.EvaluationCriteria,
		strings.Join(question.ExpectedSkills, ", "),
		responseText,
		question.MaxScore,
		question.MaxScore,
	)
}
