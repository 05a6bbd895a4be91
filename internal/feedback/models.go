package feedback

import "time"

type Feedback struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AttractionID string    `json:"attraction_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
