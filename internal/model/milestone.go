package model

import "time"

type Milestone struct {
	ID            string    `db:"id" json:"id"`
	PartnershipID string    `db:"partnership_id" json:"partnershipId"`
	CreatedBy     string    `db:"created_by" json:"createdBy"`
	Title         string    `db:"title" json:"title"`
	OccurredOn    time.Time `db:"occurred_on" json:"occurredOn"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
