package models

import "time"

// ChatMessage is one stored exchange in a user's chat history.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"timestamp"`
}
