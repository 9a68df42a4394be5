package domain

import (
	"time"

	"github.com/google/uuid"
)

type ArticleType string

const (
	ArticleTypeRegulation ArticleType = "regulation"
	ArticleTypeRule       ArticleType = "rule"
	ArticleTypeGuideline  ArticleType = "guideline"
)

// Article is a titled clause within a regulation; the unit compliance is
// assessed against. (regulation_id, reference) is unique.
type Article struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	RegulationID uuid.UUID   `json:"regulation_id" db:"regulation_id"`
	Title        string      `json:"title" db:"title"`
	Content      string      `json:"content" db:"content"`
	Type         ArticleType `json:"type" db:"type"`
	Reference    string      `json:"reference" db:"reference"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

type CreateArticleInput struct {
	Title     string      `json:"title" validate:"required,min=2,max=200"`
	Content   string      `json:"content" validate:"required"`
	Type      ArticleType `json:"type" validate:"required,oneof=regulation rule guideline"`
	Reference string      `json:"reference" validate:"required,max=50"`
}

type UpdateArticleInput struct {
	Title     *string      `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Content   *string      `json:"content,omitempty"`
	Type      *ArticleType `json:"type,omitempty" validate:"omitempty,oneof=regulation rule guideline"`
	Reference *string      `json:"reference,omitempty" validate:"omitempty,max=50"`
}
