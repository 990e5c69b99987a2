package models

import (
	"time"

	"github.com/google/uuid"
)

// Max runes of a message kept as the room preview.
const LastMessagePreviewLen = 100

type ChatRoom struct {
	ID              uuid.UUID    `json:"room_id"`
	JobID           *uuid.UUID   `json:"job_id"`
	Participants    [2]uuid.UUID `json:"participants"`
	LastMessage     string       `json:"last_message,omitempty"`
	LastMessageTime *time.Time   `json:"last_message_time"`
	CreatedAt       time.Time    `json:"created_at"`

	OtherParticipant *Profile `json:"other_participant"`
	Job              *Job     `json:"job,omitempty"`
}

func (r *ChatRoom) HasParticipant(userID uuid.UUID) bool {
	return r.Participants[0] == userID || r.Participants[1] == userID
}

// Other returns the participant that is not userID.
func (r *ChatRoom) Other(userID uuid.UUID) uuid.UUID {
	if r.Participants[0] == userID {
		return r.Participants[1]
	}
	return r.Participants[0]
}

type ChatMessage struct {
	ID        uuid.UUID `json:"message_id"`
	RoomID    uuid.UUID `json:"chat_room_id"`
	SenderID  uuid.UUID `json:"sender_user_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Preview truncates content to the room preview length, respecting rune boundaries.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= LastMessagePreviewLen {
		return content
	}
	return string(r[:LastMessagePreviewLen])
}
