package model

import "time"

type Message struct {
	ID            string    `db:"id" json:"id"`
	PartnershipID string    `db:"partnership_id" json:"partnershipId"`
	SenderID      string    `db:"sender_id" json:"senderId"`
	Body          string    `db:"body" json:"body"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
