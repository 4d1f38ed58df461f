package domain

import "time"

// Script is a generated video script together with the inputs that produced it.
type Script struct {
	ID          string
	UserID      string
	Topic       string
	Description string
	Keywords    []string
	Tone        string
	Duration    string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
