package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/quizsquirrel/social-api/internal/models"
)

type QuizRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Quiz, bool, error)
	// GetWithPreview loads the quiz, its creator, and a bounded preview of
	// questions with their options.
	GetWithPreview(ctx context.Context, id int64, questionLimit int) (*models.Quiz, bool, error)
}

type quizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) GetByID(ctx context.Context, id int64) (*models.Quiz, bool, error) {
	var q models.Quiz
	query := `SELECT id, creator_id, title, description, slug, category, cover_image_url,
			status, visibility, created_at, updated_at
		FROM quizzes WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.CreatorID, &q.Title, &q.Description,
		&q.Slug, &q.Category, &q.CoverImageURL, &q.Status, &q.Visibility, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &q, true, nil
}

func (r *quizRepository) GetWithPreview(ctx context.Context, id int64, questionLimit int) (*models.Quiz, bool, error) {
	quiz, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}

	var creator models.User
	creatorQuery := `SELECT id, username, display_name, profile_picture FROM users WHERE id = $1`
	err = r.db.QueryRowContext(ctx, creatorQuery, quiz.CreatorID).Scan(
		&creator.ID, &creator.Username, &creator.DisplayName, &creator.ProfilePicture)
	if err != nil {
		slog.Info(err.Error())
		return nil, false, err
	}
	quiz.Creator = &creator

	questions, err := r.listQuestions(ctx, id, questionLimit)
	if err != nil {
		return nil, false, err
	}
	quiz.Questions = questions

	return quiz, true, nil
}

func (r *quizRepository) listQuestions(ctx context.Context, quizID int64, limit int) ([]models.Question, error) {
	query := `SELECT id, quiz_id, question_type, prompt, position,
			min_value, max_value, min_label, max_label
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY position
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, quizID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var minVal, maxVal sql.NullInt64
		var minLabel, maxLabel sql.NullString
		err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Prompt, &q.Position,
			&minVal, &maxVal, &minLabel, &maxLabel)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if q.Type == models.QuestionRating && minVal.Valid && maxVal.Valid {
			q.Scale = &models.RatingScale{
				Min:      int(minVal.Int64),
				Max:      int(maxVal.Int64),
				MinLabel: minLabel.String,
				MaxLabel: maxLabel.String,
			}
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	for i := range questions {
		if err := r.loadOptions(ctx, &questions[i]); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (r *quizRepository) loadOptions(ctx context.Context, q *models.Question) error {
	if q.Type == models.QuestionRating {
		return nil
	}

	query := `SELECT id, label, is_correct, outcome
		FROM quiz_question_options
		WHERE question_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, q.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var label string
		var isCorrect bool
		var outcome sql.NullString
		if err := rows.Scan(&id, &label, &isCorrect, &outcome); err != nil {
			slog.Info(err.Error())
			return err
		}

		switch q.Type {
		case models.QuestionMultipleChoice:
			q.Choices = append(q.Choices, models.ChoiceOption{ID: id, Label: label, IsCorrect: isCorrect})
		case models.QuestionPersonality:
			q.Outcomes = append(q.Outcomes, models.PersonalityOption{ID: id, Label: label, Outcome: outcome.String})
		case models.QuestionPoll:
			q.PollChoices = append(q.PollChoices, models.PollOption{ID: id, Label: label})
		}
	}
	return rows.Err()
}
