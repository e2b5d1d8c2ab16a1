package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

var (
	ErrJournalEntryNotFound = errors.New("journal entry not found")
)

type JournalRepository interface {
	Create(entry *model.JournalEntry) error
	ByID(userID, entryID string) (*model.JournalEntry, error)
	Entries(userID string) ([]*model.JournalEntry, error)
	Update(entry *model.JournalEntry) error
	Delete(userID, entryID string) error
}

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(entry *model.JournalEntry) error {
	query := `INSERT INTO journal_entries (id, user_id, title, body, mood, insight, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		entry.ID,
		entry.UserID,
		entry.Title,
		entry.Body,
		entry.Mood,
		entry.Insight,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	return err
}

func (r *journalRepository) ByID(userID, entryID string) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{}
	query := `SELECT * FROM journal_entries WHERE id = $1 AND user_id = $2`

	err := r.db.Get(entry, query, entryID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrJournalEntryNotFound
	}

	return entry, err
}

func (r *journalRepository) Entries(userID string) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	query := `SELECT * FROM journal_entries WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&entries, query, userID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *journalRepository) Update(entry *model.JournalEntry) error {
	query := `UPDATE journal_entries
	          SET title = $1, body = $2, mood = $3, insight = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := r.db.Exec(query,
		entry.Title,
		entry.Body,
		entry.Mood,
		entry.Insight,
		time.Now(),
		entry.ID,
		entry.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrJournalEntryNotFound
	}

	return nil
}

func (r *journalRepository) Delete(userID, entryID string) error {
	query := `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, entryID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrJournalEntryNotFound
	}

	return nil
}
