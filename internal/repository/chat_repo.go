package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nomadshift/backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

const roomColumns = `id, job_id, participant_a, participant_b, last_message, last_message_time, created_at`

func scanRoom(row scanner) (*models.ChatRoom, error) {
	var rm models.ChatRoom
	err := row.Scan(&rm.ID, &rm.JobID, &rm.Participants[0], &rm.Participants[1], &rm.LastMessage, &rm.LastMessageTime, &rm.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rm, nil
}

// CreateRoom inserts a room inside the caller's transaction.
func (r *ChatRepo) CreateRoom(ctx context.Context, tx pgx.Tx, rm *models.ChatRoom) error {
	return tx.QueryRow(ctx, `
		INSERT INTO chat_rooms (id, job_id, participant_a, participant_b)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, rm.ID, rm.JobID, rm.Participants[0], rm.Participants[1]).Scan(&rm.CreatedAt)
}

func (r *ChatRepo) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	return scanRoom(r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM chat_rooms WHERE id = $1`, id))
}

// ListRoomsForUser orders by latest message; rooms without messages go last.
func (r *ChatRepo) ListRoomsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatRoom, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+roomColumns+` FROM chat_rooms
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY last_message_time DESC NULLS LAST, created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatRoom
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rm)
	}
	return list, rows.Err()
}

func (r *ChatRepo) ListMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, chat_room_id, sender_user_id, content, read, created_at
		FROM chat_messages WHERE chat_room_id = $1 ORDER BY created_at ASC LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// MarkRead flags every message in the room not sent by readerID as read.
func (r *ChatRepo) MarkRead(ctx context.Context, roomID, readerID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_messages SET read = TRUE WHERE chat_room_id = $1 AND sender_user_id <> $2 AND read = FALSE
	`, roomID, readerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AddMessage stores the message and updates the room preview in one transaction.
func (r *ChatRepo) AddMessage(ctx context.Context, m *models.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO chat_messages (id, chat_room_id, sender_user_id, content, read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, m.ID, m.RoomID, m.SenderID, m.Content, m.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE chat_rooms SET last_message = $2, last_message_time = $3 WHERE id = $1
	`, m.RoomID, models.Preview(m.Content), m.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
