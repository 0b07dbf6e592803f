package models

import "time"

// MoldComment is a free-text annotation on a mold for a given day.
type MoldComment struct {
	MoldID    string
	Text      string
	Date      Date
	CreatedAt time.Time
}
