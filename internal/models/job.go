package models

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title             string    `gorm:"type:text;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	RequiredSkills    []string  `gorm:"serializer:json" json:"required_skills"`
	RequiredYears     *float64  `gorm:"type:decimal(4,1)" json:"required_years,omitempty"`
	RequiredEducation string    `gorm:"type:text" json:"required_education"`
	ExperienceLevel   string    `gorm:"type:text" json:"experience_level"`
	Locations         []string  `gorm:"serializer:json" json:"locations"`
	Embedding         []float32 `gorm:"serializer:json" json:"-"`
	CreatedAt         time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// EmbeddingText is the text the job's description embedding is computed from.
func (j *Job) EmbeddingText() string {
	return j.Title + "\n" + j.Description
}

type Candidate struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string    `gorm:"type:text;not null" json:"name"`
	Skills          []string  `gorm:"serializer:json" json:"skills"`
	YearsExperience float64   `gorm:"type:decimal(4,1)" json:"years_experience"`
	Education       string    `gorm:"type:text" json:"education"`
	Location        string    `gorm:"type:text" json:"location"`
	ResumeSummary   string    `gorm:"type:text" json:"resume_summary"`
	Embedding       []float32 `gorm:"serializer:json" json:"-"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// EmbeddingText combines the resume summary and skill list, matching what
// the job side embeds against.
func (c *Candidate) EmbeddingText() string {
	text := c.ResumeSummary
	for _, s := range c.Skills {
		text += "\n" + s
	}
	return text
}
