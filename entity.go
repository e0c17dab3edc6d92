package tick

import "time"

// Entity carries the bookkeeping fields shared by every persisted record.
// Embed it in entity structs; stores stamp the fields on create and update.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch sets UpdatedAt to now (UTC), stamping CreatedAt too if unset.
func (e *Entity) Touch(now time.Time) {
	now = now.UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}
