package model

import "time"

const (
	PartnershipStatusActive = "active"
	PartnershipStatusEnded  = "ended"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRevoked  = "revoked"
)

type Partnership struct {
	ID        string    `db:"id" json:"id"`
	UserOneID string    `db:"user_one_id" json:"userOneId"`
	UserTwoID string    `db:"user_two_id" json:"userTwoId"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CounterpartOf returns the other member of the partnership, or "" when
// userID is not a member.
func (p *Partnership) CounterpartOf(userID string) string {
	switch userID {
	case p.UserOneID:
		return p.UserTwoID
	case p.UserTwoID:
		return p.UserOneID
	}
	return ""
}

func (p *Partnership) HasMember(userID string) bool {
	return userID == p.UserOneID || userID == p.UserTwoID
}

type PartnershipInvite struct {
	ID        string    `db:"id" json:"id"`
	InviterID string    `db:"inviter_id" json:"inviterId"`
	Email     string    `db:"email" json:"email"`
	Code      string    `db:"code" json:"code"`
	Status    string    `db:"status" json:"status"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (i *PartnershipInvite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
