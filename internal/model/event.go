package model

import "time"

// Event statuses as stored in the `events.status` enum column.  Checkout
// only proceeds against events in StatusActive; every other status makes
// the event invisible to buyers.
const (
	EventStatusDraft      = "draft"
	EventStatusActive     = "active"
	EventStatusContingent = "contingent"
	EventStatusCanceled   = "canceled"
	EventStatusCompleted  = "completed"
	EventStatusPostponed  = "postponed"
)

// Event represents a single occasion tickets are sold for.  It is owned
// by a promoter and read-only from the checkout flow's perspective.
//
// Fields:
//  ID          – primary key identifier.
//  PromoterID  – owning promoter account.
//  Name        – display name (max 100 chars).
//  Description – free-form description text.
//  Venue       – JSON venue descriptor as stored in the jsonb column.
//  Timezone    – IANA timezone name used to localize dates in
//                buyer-facing messages (e.g. "America/New_York").
//  Slug        – URL slug.
//  StartDate   – when the event starts.
//  EndDate     – when the event ends.
//  PublishDate – when the event was made public.
//  Status      – one of the EventStatus* constants.
//  CreatedAt   – row creation timestamp.
//  UpdatedAt   – last modification timestamp.
type Event struct {
	ID          uint64     // events.id
	PromoterID  uint64     // events.promoter_id
	Name        string     // events.name
	Description string     // events.description
	Venue       string     // events.venue (raw JSON)
	Timezone    string     // events.timezone
	Slug        string     // events.slug
	StartDate   *time.Time // events.start_date (nullable)
	EndDate     *time.Time // events.end_date (nullable)
	PublishDate *time.Time // events.publish_date (nullable)
	Status      string     // events.status
	CreatedAt   time.Time  // events.created_at
	UpdatedAt   time.Time  // events.updated_at
}

// Sellable reports whether checkout may proceed against this event.
func (e *Event) Sellable() bool { return e.Status == EventStatusActive }
