package domain

import "time"

const DefaultInviteMaxUses = 1

type Invite struct {
	Token     string     `json:"token"`
	GroupID   string     `json:"group_id"`
	CreatedBy string     `json:"created_by"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	MaxUses   int        `json:"max_uses"`
	Uses      int        `json:"uses"`
	CreatedAt time.Time  `json:"created_at"`
}

// CheckRedeemable reports why an invite cannot be redeemed at now, if at all.
func (i *Invite) CheckRedeemable(now time.Time) error {
	if i == nil || !i.Active {
		return NewError(KindInvalidOrExpiredToken, "invite is invalid or has expired")
	}
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return NewError(KindInvalidOrExpiredToken, "invite is invalid or has expired")
	}
	if i.Uses >= i.MaxUses {
		return NewError(KindMaxUsesReached, "invite has reached its maximum uses")
	}
	return nil
}
