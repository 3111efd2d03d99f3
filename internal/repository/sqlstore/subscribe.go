package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/pricewatch/internal/repository"
)

// SubscribeChat links a chat to a user so that the user's alerts are delivered there.
func (r *Repository) SubscribeChat(ctx context.Context, chatID int64, userID string) error {
	const opn = "repository.sqlstore.SubscribeChat"
	_, err := r.db.ExecContext(ctx,
		r.q("INSERT INTO chat_subscriptions (chat_id, user_id) VALUES (?, ?) ON CONFLICT (chat_id, user_id) DO NOTHING"),
		chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// UnsubscribeChat removes every link of the chat.
func (r *Repository) UnsubscribeChat(ctx context.Context, chatID int64) error {
	const opn = "repository.sqlstore.UnsubscribeChat"
	_, err := r.db.ExecContext(ctx, r.q("DELETE FROM chat_subscriptions WHERE chat_id = ?"), chatID)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// ChatsForUser returns the chat IDs linked to a user.
func (r *Repository) ChatsForUser(ctx context.Context, userID string) ([]int64, error) {
	const opn = "repository.sqlstore.ChatsForUser"
	rows, err := r.db.QueryContext(ctx, r.q("SELECT chat_id FROM chat_subscriptions WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: failed to scan chat_id: %w", opn, err)
		}
		chatIDs = append(chatIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return chatIDs, nil
}

// CreateLinkCode stores a one-time code that links a chat to userID until expiresAt.
// Expired codes are purged on the way.
func (r *Repository) CreateLinkCode(ctx context.Context, code, userID string, expiresAt time.Time) error {
	const opn = "repository.sqlstore.CreateLinkCode"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx is the usual name for a transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a commit

	if _, err = tx.ExecContext(ctx,
		r.q("DELETE FROM chat_link_codes WHERE expires_at <= ?"), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("%s: failed to purge expired codes: %w", opn, err)
	}

	if _, err = tx.ExecContext(ctx,
		r.q("INSERT INTO chat_link_codes (code, user_id, expires_at) VALUES (?, ?, ?)"),
		code, userID, expiresAt.UTC(),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", opn, repository.ErrConflict)
		}
		return fmt.Errorf("%s: failed to insert code: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// RedeemLinkCode consumes a code that has not expired at now and subscribes chatID to the
// code's user. Unknown, used and expired codes yield repository.ErrNotFound.
func (r *Repository) RedeemLinkCode(ctx context.Context, code string, chatID int64, now time.Time) (string, error) {
	const opn = "repository.sqlstore.RedeemLinkCode"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx is the usual name for a transaction
	if err != nil {
		return "", fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a commit

	var userID string
	err = tx.QueryRowContext(ctx,
		r.q("DELETE FROM chat_link_codes WHERE code = ? AND expires_at > ? RETURNING user_id"),
		code, now.UTC(),
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", opn, repository.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: failed to consume code: %w", opn, err)
	}

	if _, err = tx.ExecContext(ctx,
		r.q("INSERT INTO chat_subscriptions (chat_id, user_id) VALUES (?, ?) ON CONFLICT (chat_id, user_id) DO NOTHING"),
		chatID, userID,
	); err != nil {
		return "", fmt.Errorf("%s: failed to subscribe chat: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return userID, nil
}
