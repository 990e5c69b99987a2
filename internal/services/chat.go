package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
)

// SendMessageInput is the decoded body of POST /api/chats/{room_id}/messages.
type SendMessageInput struct {
	Content string `json:"content"`
}

// ChatJobLookup resolves the jobs rooms were opened for.
type ChatJobLookup interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Job, error)
}

// ChatProfileLookup resolves the other participant of each room.
type ChatProfileLookup interface {
	ListByUserIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error)
}

// ChatService relays messages between the two participants of a room.
type ChatService struct {
	Rooms    ChatStore
	Profiles ChatProfileLookup
	Jobs     ChatJobLookup
	Log      *slog.Logger

	now func() time.Time
}

func NewChatService(rooms ChatStore, profiles ChatProfileLookup, jobs ChatJobLookup, log *slog.Logger) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{Rooms: rooms, Profiles: profiles, Jobs: jobs, Log: log, now: time.Now}
}

// ListRooms returns the caller's rooms, most recently active first.
func (s *ChatService) ListRooms(ctx context.Context, userID uuid.UUID) ([]*models.ChatRoom, error) {
	rooms, err := s.Rooms.ListRoomsForUser(ctx, userID, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []*models.ChatRoom{}, nil
	}

	others := make([]uuid.UUID, 0, len(rooms))
	var jobIDs []uuid.UUID
	for _, rm := range rooms {
		others = append(others, rm.Other(userID))
		if rm.JobID != nil {
			jobIDs = append(jobIDs, *rm.JobID)
		}
	}
	profiles, err := s.Profiles.ListByUserIDs(ctx, others)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	jobsByID := make(map[uuid.UUID]*models.Job, len(jobIDs))
	if len(jobIDs) > 0 {
		jobs, err := s.Jobs.ListByIDs(ctx, jobIDs)
		if err != nil {
			return nil, fmt.Errorf("load room jobs: %w", err)
		}
		for _, j := range jobs {
			jobsByID[j.ID] = j
		}
	}
	for _, rm := range rooms {
		rm.OtherParticipant = profiles[rm.Other(userID)]
		if rm.JobID != nil {
			rm.Job = jobsByID[*rm.JobID]
		}
	}
	sortByActivity(rooms)
	return rooms, nil
}

// ListMessages returns the room's messages oldest first, then marks the ones
// addressed to the caller as read. The returned slice reflects the state before marking.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID) ([]*models.ChatMessage, error) {
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	msgs, err := s.Rooms.ListMessages(ctx, roomID, messagePageSize)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	n, err := s.Rooms.MarkRead(ctx, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		s.Log.Debug("messages marked read", "chat_room_id", roomID, "user_id", userID, "count", n)
	}
	return msgs, nil
}

// Send appends a message from the caller and refreshes the room preview.
func (s *ChatService) Send(ctx context.Context, userID, roomID uuid.UUID, in SendMessageInput) (*models.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperrors.Validation("message content must not be empty")
	}
	if _, err := s.participantRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  userID,
		Content:   content,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Rooms.AddMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	return msg, nil
}

func (s *ChatService) participantRoom(ctx context.Context, userID, roomID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, notFound(err, "chat room not found")
	}
	if !room.HasParticipant(userID) {
		return nil, apperrors.Unauthorized("not a participant of this chat")
	}
	return room, nil
}

// sortByActivity orders rooms by last message time descending; rooms without
// messages go last, newest first.
func sortByActivity(rooms []*models.ChatRoom) {
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		switch {
		case a.LastMessageTime != nil && b.LastMessageTime != nil:
			return a.LastMessageTime.After(*b.LastMessageTime)
		case a.LastMessageTime != nil:
			return true
		case b.LastMessageTime != nil:
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
