package models

import "time"

// Project groups a user's conversation into an ordered message thread.
// Deleting a project cascades to its messages; referenced articles are
// shared and survive the delete.
type Project struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
