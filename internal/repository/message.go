package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/usetandem/tandem/internal/model"
)

type MessageRepository interface {
	Create(message *model.Message) error
	ByPartnership(partnershipID string, limit int) ([]*model.Message, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *model.Message) error {
	query := `INSERT INTO messages (id, partnership_id, sender_id, body, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query,
		message.ID,
		message.PartnershipID,
		message.SenderID,
		message.Body,
		message.CreatedAt,
	)

	return err
}

func (r *messageRepository) ByPartnership(partnershipID string, limit int) ([]*model.Message, error) {
	var messages []*model.Message

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT * FROM messages WHERE partnership_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.Select(&messages, query, partnershipID, limit)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
