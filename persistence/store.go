package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/techwiz42/cyberiad/db/chat_db/model"
)

// Store is the durable message store. It owns write-ahead truth for
// messages and read receipts; the websocket layer only ever announces
// what is already committed here.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

// CreateMessage commits a user-authored message and the sender's own
// read receipt in one transaction.
func (s *Store) CreateMessage(ctx context.Context, threadID uint64, userID uint64, content string, metadata map[string]interface{}) (*model.Messages, error) {
	return s.insertMessage(ctx, threadID, sql.NullInt64{Int64: int64(userID), Valid: true}, sql.NullInt64{}, content, metadata)
}

// CreateAgentMessage commits a message authored by a thread agent.
func (s *Store) CreateAgentMessage(ctx context.Context, threadID uint64, agentID uint64, content string, metadata map[string]interface{}) (*model.Messages, error) {
	return s.insertMessage(ctx, threadID, sql.NullInt64{}, sql.NullInt64{Int64: int64(agentID), Valid: true}, content, metadata)
}

func (s *Store) insertMessage(ctx context.Context, threadID uint64, userID sql.NullInt64, agentID sql.NullInt64, content string, metadata map[string]interface{}) (*model.Messages, error) {
	meta := "{}"

	if len(metadata) > 0 {
		marshalled, err := json.Marshal(metadata)

		if err != nil {
			return nil, err
		}

		meta = string(marshalled)
	}

	salt := uuid.New().String()
	createdAt := time.Now()

	tx, err := s.DB.BeginTxx(ctx, &sql.TxOptions{ReadOnly: false})

	if err != nil {
		slog.Error("Couldn't begin tx, db error 💀",
			slog.String("error", err.Error()))

		return nil, err
	}

	_, err = tx.Exec("INSERT INTO messages (created_at, object_salt, thread_id, user_id, agent_id, content, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)",
		createdAt, salt, threadID, userID, agentID, content, meta)

	if err != nil {
		tx.Rollback()

		slog.Error("Couldn't insert message, db error 💀",
			slog.String("error", err.Error()))

		return nil, err
	}

	var messageID uint64

	if err := tx.Get(&messageID, "SELECT LAST_INSERT_ID()"); err != nil {
		tx.Rollback()

		return nil, err
	}

	// The sender has read its own message.
	if userID.Valid {
		_, err = tx.Exec("INSERT INTO message_read_receipts (message_id, user_id, read_at) VALUES (?, ?, ?)",
			messageID, userID.Int64, createdAt)

		if err != nil {
			tx.Rollback()

			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("Couldn't commit message 💀",
			slog.String("error", err.Error()))

		return nil, err
	}

	message := model.Messages{}

	if err := s.DB.Get(&message, "SELECT * FROM messages WHERE id = ? LIMIT 1", messageID); err != nil {
		return nil, err
	}

	return &message, nil
}

func (s *Store) GetMessageByID(ctx context.Context, messageID uint64) (*model.Messages, error) {
	message := model.Messages{}

	if err := s.DB.GetContext(ctx, &message, "SELECT * FROM messages WHERE id = ? LIMIT 1", messageID); err != nil {
		return nil, err
	}

	return &message, nil
}

// GetThreadMessages pages backwards through a thread's history. Deleted
// messages are filtered out.
func (s *Store) GetThreadMessages(ctx context.Context, threadID uint64, limit int, before *time.Time) ([]model.Messages, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages := []model.Messages{}

	if before != nil {
		err := s.DB.SelectContext(ctx, &messages,
			"SELECT * FROM messages WHERE thread_id = ? AND deleted = false AND created_at < ? ORDER BY created_at DESC LIMIT ?",
			threadID, *before, limit)

		return messages, err
	}

	err := s.DB.SelectContext(ctx, &messages,
		"SELECT * FROM messages WHERE thread_id = ? AND deleted = false ORDER BY created_at DESC LIMIT ?",
		threadID, limit)

	return messages, err
}

// IsThreadParticipant is the connect-time authorization gate.
func (s *Store) IsThreadParticipant(ctx context.Context, threadID uint64, userID uint64) (bool, error) {
	var count int64

	err := s.DB.GetContext(ctx, &count,
		"SELECT count(*) FROM thread_participants WHERE thread_id = ? AND user_id = ? AND is_active = true",
		threadID, userID)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateReadReceipt upserts one receipt; re-reading just refreshes the
// timestamp.
func (s *Store) CreateReadReceipt(ctx context.Context, messageID uint64, userID uint64, readAt time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO message_read_receipts (message_id, user_id, read_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE read_at = ?",
		messageID, userID, readAt, readAt)

	return err
}

// MarkThreadRead backfills receipts for everything the user hasn't
// acknowledged yet and stamps their participant row.
func (s *Store) MarkThreadRead(ctx context.Context, threadID uint64, userID uint64) error {
	now := time.Now()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO message_read_receipts (message_id, user_id, read_at)
		SELECT m.id, ?, ?
		FROM messages m
		LEFT JOIN message_read_receipts r ON r.message_id = m.id AND r.user_id = ?
		WHERE m.thread_id = ? AND (m.user_id IS NULL OR m.user_id != ?) AND m.deleted = false AND r.id IS NULL`,
		userID, now, userID, threadID, userID)

	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx,
		"UPDATE thread_participants SET last_read_at = ? WHERE thread_id = ? AND user_id = ?",
		now, threadID, userID)

	return err
}

// UnreadCount counts messages from others since the user's newest
// receipt in the thread.
func (s *Store) UnreadCount(ctx context.Context, threadID uint64, userID uint64) (int64, error) {
	var lastRead sql.NullTime

	err := s.DB.GetContext(ctx, &lastRead, `
		SELECT MAX(r.read_at)
		FROM message_read_receipts r
		JOIN messages m ON m.id = r.message_id
		WHERE m.thread_id = ? AND r.user_id = ?`,
		threadID, userID)

	if err != nil {
		return 0, err
	}

	var count int64

	if lastRead.Valid {
		err = s.DB.GetContext(ctx, &count,
			"SELECT count(*) FROM messages WHERE thread_id = ? AND (user_id IS NULL OR user_id != ?) AND deleted = false AND created_at > ?",
			threadID, userID, lastRead.Time)
	} else {
		err = s.DB.GetContext(ctx, &count,
			"SELECT count(*) FROM messages WHERE thread_id = ? AND (user_id IS NULL OR user_id != ?) AND deleted = false",
			threadID, userID)
	}

	return count, err
}

// UpdateMessage rewrites content, latches the edited flag and keeps the
// prior content in the metadata edit history.
func (s *Store) UpdateMessage(ctx context.Context, messageID uint64, editorID uint64, newContent string) (*model.Messages, error) {
	message, err := s.GetMessageByID(ctx, messageID)

	if err != nil {
		return nil, err
	}

	if !message.UserID.Valid || uint64(message.UserID.Int64) != editorID {
		return nil, ErrNotMessageAuthor
	}

	meta := message.MetadataMap()

	history, _ := meta["edit_history"].([]interface{})
	history = append(history, map[string]interface{}{
		"content":   message.Content,
		"edited_at": time.Now().UTC().Format(time.RFC3339),
	})
	meta["edit_history"] = history

	marshalled, err := json.Marshal(meta)

	if err != nil {
		return nil, err
	}

	_, err = s.DB.ExecContext(ctx,
		"UPDATE messages SET content = ?, metadata = ?, edited = true, edited_at = ? WHERE id = ?",
		newContent, string(marshalled), time.Now(), messageID)

	if err != nil {
		return nil, err
	}

	return s.GetMessageByID(ctx, messageID)
}

// SoftDeleteMessage keeps the row, flips the deleted flag.
func (s *Store) SoftDeleteMessage(ctx context.Context, messageID uint64, deleterID uint64) error {
	message, err := s.GetMessageByID(ctx, messageID)

	if err != nil {
		return err
	}

	if !message.UserID.Valid || uint64(message.UserID.Int64) != deleterID {
		return ErrNotMessageAuthor
	}

	_, err = s.DB.ExecContext(ctx,
		"UPDATE messages SET deleted = true, deleted_at = ? WHERE id = ?",
		time.Now(), messageID)

	return err
}
