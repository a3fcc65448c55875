package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

const questionCollection = "questions"

// QuestionStorage implements the QuestionStorage interface for Badger
type QuestionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQuestionStorage creates a new QuestionStorage instance
func NewQuestionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QuestionStorage {
	return &QuestionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *QuestionStorage) Insert(ctx context.Context, question *models.Question) (*models.Question, error) {
	if question.Text == "" {
		return nil, fmt.Errorf("question text is required")
	}

	seq, err := s.db.NextSeq(questionCollection)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	question.ID = common.NewQuestionID()
	question.Seq = seq
	question.CreatedAt = now
	question.UpdatedAt = now

	if err := s.db.Store().Insert(question.ID, question); err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}
	return question, nil
}

func (s *QuestionStorage) Get(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := s.db.Store().Get(id, &question); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("question not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

func (s *QuestionStorage) Update(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question ID is required")
	}
	question.UpdatedAt = time.Now()

	if err := s.db.Store().Update(question.ID, question); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("question not found: %s", question.ID)
		}
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (s *QuestionStorage) ListUnanswered(ctx context.Context, limit int) ([]*models.Question, error) {
	var questions []models.Question
	if err := s.db.Store().Find(&questions, badgerhold.Where("Answer").Eq("")); err != nil {
		return nil, fmt.Errorf("failed to list unanswered questions: %w", err)
	}

	sort.Slice(questions, func(i, j int) bool { return questions[i].Seq < questions[j].Seq })
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}

	result := make([]*models.Question, len(questions))
	for i := range questions {
		result[i] = &questions[i]
	}
	return result, nil
}

func (s *QuestionStorage) ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Question, error) {
	var questions []models.Question
	if err := s.db.Store().Find(&questions, badgerhold.Where("Embedding").IsNil()); err != nil {
		return nil, fmt.Errorf("failed to list questions pending embedding: %w", err)
	}

	sort.Slice(questions, func(i, j int) bool { return questions[i].Seq < questions[j].Seq })
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}

	result := make([]*models.Question, len(questions))
	for i := range questions {
		result[i] = &questions[i]
	}
	return result, nil
}

func (s *QuestionStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Question{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return int(count), nil
}
