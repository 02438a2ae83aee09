package models

import "time"

const (
	QuizStatusDraft     = "DRAFT"
	QuizStatusPublished = "PUBLISHED"
	QuizStatusArchived  = "ARCHIVED"
)

const (
	QuizVisibilityPublic  = "PUBLIC"
	QuizVisibilityPrivate = "PRIVATE"
)

type Quiz struct {
	ID            int64     `db:"id" json:"id"`
	CreatorID     int64     `db:"creator_id" json:"creator_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Slug          string    `db:"slug" json:"slug"`
	Category      string    `db:"category" json:"category"`
	CoverImageURL string    `db:"cover_image_url" json:"cover_image_url"`
	Status        string    `db:"status" json:"status"`
	Visibility    string    `db:"visibility" json:"visibility"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	// Populated by QuizRepository.GetWithPreview.
	Creator   *User      `db:"-" json:"creator,omitempty"`
	Questions []Question `db:"-" json:"questions,omitempty"`
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionPersonality    QuestionType = "PERSONALITY"
	QuestionPoll           QuestionType = "POLL"
	QuestionRating         QuestionType = "RATING"
)

// Question is a tagged union over the quiz question types. Exactly one of the
// type-specific option fields is populated, selected by Type.
type Question struct {
	ID       int64        `db:"id" json:"id"`
	QuizID   int64        `db:"quiz_id" json:"quiz_id"`
	Type     QuestionType `db:"question_type" json:"question_type"`
	Prompt   string       `db:"prompt" json:"prompt"`
	Position int          `db:"position" json:"position"`

	Choices     []ChoiceOption      `db:"-" json:"choices,omitempty"`      // MULTIPLE_CHOICE
	Outcomes    []PersonalityOption `db:"-" json:"outcomes,omitempty"`     // PERSONALITY
	PollChoices []PollOption        `db:"-" json:"poll_choices,omitempty"` // POLL
	Scale       *RatingScale        `db:"-" json:"scale,omitempty"`        // RATING
}

type ChoiceOption struct {
	ID        int64  `db:"id" json:"id"`
	Label     string `db:"label" json:"label"`
	IsCorrect bool   `db:"is_correct" json:"is_correct"`
}

type PersonalityOption struct {
	ID      int64  `db:"id" json:"id"`
	Label   string `db:"label" json:"label"`
	Outcome string `db:"outcome" json:"outcome"`
}

type PollOption struct {
	ID    int64  `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

type RatingScale struct {
	Min      int    `db:"min_value" json:"min"`
	Max      int    `db:"max_value" json:"max"`
	MinLabel string `db:"min_label" json:"min_label"`
	MaxLabel string `db:"max_label" json:"max_label"`
}

// OptionLabels flattens the populated option shape into display strings for
// post previews.
func (q *Question) OptionLabels() []string {
	switch q.Type {
	case QuestionMultipleChoice:
		labels := make([]string, 0, len(q.Choices))
		for _, c := range q.Choices {
			labels = append(labels, c.Label)
		}
		return labels
	case QuestionPersonality:
		labels := make([]string, 0, len(q.Outcomes))
		for _, o := range q.Outcomes {
			labels = append(labels, o.Label)
		}
		return labels
	case QuestionPoll:
		labels := make([]string, 0, len(q.PollChoices))
		for _, p := range q.PollChoices {
			labels = append(labels, p.Label)
		}
		return labels
	case QuestionRating:
		if q.Scale == nil {
			return nil
		}
		return []string{q.Scale.MinLabel, q.Scale.MaxLabel}
	default:
		return nil
	}
}
