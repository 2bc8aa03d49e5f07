package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pizzeria-telegram/db"
	"pizzeria-telegram/models"

	"github.com/jackc/pgx/v5"
)

// SnapshotLine references a menu item by id; prices are re-read from the catalog on restore.
type SnapshotLine struct {
	ID  int `json:"id"`
	Qty int `json:"qty"`
}

// SessionSnapshot is the persisted part of a session: user and cart only.
type SessionSnapshot struct {
	Email string         `json:"email,omitempty"`
	Name  string         `json:"name,omitempty"`
	Items []SnapshotLine `json:"items"`
}

func SnapshotFromState(st State) SessionSnapshot {
	snap := SessionSnapshot{Items: make([]SnapshotLine, 0, len(st.Lines))}
	if st.User != nil {
		snap.Email = st.User.Email
		snap.Name = st.User.Name
	}
	for _, l := range st.Lines {
		snap.Items = append(snap.Items, SnapshotLine{ID: l.Item.ID, Qty: l.Quantity})
	}
	return snap
}

// Empty reports whether there is nothing worth keeping.
func (s SessionSnapshot) Empty() bool {
	return s.Email == "" && len(s.Items) == 0
}

// Restore resolves the snapshot against the menu. Unknown ids and non-positive
// quantities are dropped.
func (s SessionSnapshot) Restore() (*models.User, []models.CartLine) {
	var user *models.User
	if s.Email != "" {
		user = &models.User{Email: s.Email, Name: s.Name}
	}
	var lines []models.CartLine
	for _, it := range s.Items {
		item, ok := MenuItemByID(it.ID)
		if !ok || it.Qty <= 0 {
			continue
		}
		lines = append(lines, models.CartLine{Item: item, Quantity: it.Qty})
	}
	return user, lines
}

// Snapshotter persists session snapshots keyed by chat id.
type Snapshotter interface {
	Load(ctx context.Context, chatID int64) (*SessionSnapshot, error)
	Save(ctx context.Context, chatID int64, snap SessionSnapshot) error
	Delete(ctx context.Context, chatID int64) error
}

// PGSnapshots stores snapshots in the session_snapshots table through db.Pool.
type PGSnapshots struct{}

func (PGSnapshots) Load(ctx context.Context, chatID int64) (*SessionSnapshot, error) {
	return GetSessionSnapshot(ctx, chatID)
}

func (PGSnapshots) Save(ctx context.Context, chatID int64, snap SessionSnapshot) error {
	return SaveSessionSnapshot(ctx, chatID, snap)
}

func (PGSnapshots) Delete(ctx context.Context, chatID int64) error {
	return DeleteSessionSnapshot(ctx, chatID)
}

// GetSessionSnapshot returns nil, nil when the chat has no snapshot.
func GetSessionSnapshot(ctx context.Context, chatID int64) (*SessionSnapshot, error) {
	var email, name string
	var itemsJSON []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT email, name, items FROM session_snapshots WHERE chat_id = $1`,
		chatID,
	).Scan(&email, &name, &itemsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	snap := &SessionSnapshot{Email: email, Name: name}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &snap.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot items: %w", err)
		}
	}
	return snap, nil
}

func SaveSessionSnapshot(ctx context.Context, chatID int64, snap SessionSnapshot) error {
	itemsJSON, err := json.Marshal(snap.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot items: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO session_snapshots (chat_id, email, name, items, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (chat_id) DO UPDATE SET
			email = $2,
			name = $3,
			items = $4,
			updated_at = now()`,
		chatID, snap.Email, snap.Name, itemsJSON,
	)
	return err
}

func DeleteSessionSnapshot(ctx context.Context, chatID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM session_snapshots WHERE chat_id = $1`, chatID)
	return err
}
