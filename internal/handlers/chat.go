package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/services"
)

type ChatAPI interface {
	ListRooms(ctx context.Context, userID uuid.UUID) ([]*models.ChatRoom, error)
	ListMessages(ctx context.Context, userID, roomID uuid.UUID) ([]*models.ChatMessage, error)
	Send(ctx context.Context, userID, roomID uuid.UUID, in services.SendMessageInput) (*models.ChatMessage, error)
}

var _ ChatAPI = (*services.ChatService)(nil)

type ChatHandler struct {
	Chat    ChatAPI
	Decoder BodyDecoder
	Logger  *slog.Logger
}

// ListRooms handles GET /api/chats.
func (h *ChatHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	rooms, err := h.Chat.ListRooms(r.Context(), user.ID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(rooms))
}

// ListMessages handles GET /api/chats/{room_id}/messages and marks the
// counterpart's messages as read.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	roomID, err := pathID(r, "room_id", "chat room")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	msgs, err := h.Chat.ListMessages(r.Context(), user.ID, roomID)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, orEmpty(msgs))
}

// Send handles POST /api/chats/{room_id}/messages.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	roomID, err := pathID(r, "room_id", "chat room")
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	var in services.SendMessageInput
	if err := h.Decoder.Decode(r.Context(), services.SchemaSendMessage, r.Body, &in); err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	msg, err := h.Chat.Send(r.Context(), user.ID, roomID, in)
	if err != nil {
		apperrors.WriteError(w, r, h.Logger, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, msg)
}
