package model

import "time"

// Promoter is an organizer account that owns events.  Promoter CRUD is
// out of scope for the checkout core; the type exists so offer and
// event mutations can enforce membership.
type Promoter struct {
	ID        uint64    // promoters.id
	Name      string    // promoters.name
	CreatedAt time.Time // promoters.created_at
	UpdatedAt time.Time // promoters.updated_at
}

// PromoterMember links a user to a promoter.  Mutations on a promoter's
// events and offers require such a link; its absence is a Forbidden.
type PromoterMember struct {
	ID         uint64    // promoter_members.id
	PromoterID uint64    // promoter_members.promoter_id
	UserID     uint64    // promoter_members.user_id
	CreatedAt  time.Time // promoter_members.created_at
}
