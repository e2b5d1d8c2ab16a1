package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
)

const journalInsightSystem = "You are a gentle relationship coach. Given a private journal entry, " +
	"offer one short, supportive reflection (2-3 sentences). Never judge, never give medical advice."

type JournalService struct {
	repo      repository.JournalRepository
	generator TextGenerator
}

func NewJournalService(repo repository.JournalRepository, generator TextGenerator) *JournalService {
	return &JournalService{
		repo:      repo,
		generator: generator,
	}
}

func (s *JournalService) Create(userID, title, body, mood string) (*model.JournalEntry, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now()
	entry := &model.JournalEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		Mood:      mood,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repo.Create(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return entry, nil
}

func (s *JournalService) ByID(userID, entryID string) (*model.JournalEntry, error) {
	return s.repo.ByID(userID, entryID)
}

func (s *JournalService) Entries(userID string) ([]*model.JournalEntry, error) {
	return s.repo.Entries(userID)
}

func (s *JournalService) Update(userID, entryID, title, body, mood string) (*model.JournalEntry, error) {
	entry, err := s.repo.ByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	entry.Title = title
	entry.Body = body
	entry.Mood = mood
	entry.UpdatedAt = time.Now()

	err = s.repo.Update(entry)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *JournalService) Delete(userID, entryID string) error {
	return s.repo.Delete(userID, entryID)
}

// GenerateInsight asks the text generator for a supportive reflection on
// the entry and stores it on the entry.
func (s *JournalService) GenerateInsight(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	entry, err := s.repo.ByID(userID, entryID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Journal entry titled %q (mood: %s):\n\n%s", entry.Title, entry.Mood, entry.Body)
	insight, err := s.generator.Generate(ctx, journalInsightSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate insight: %w", err)
	}

	entry.Insight = &insight
	entry.UpdatedAt = time.Now()

	err = s.repo.Update(entry)
	if err != nil {
		return nil, err
	}

	return entry, nil
}
