package database

import (
	"context"
	"database/sql"
	"fmt"

	"facilitybook/internal/models"
)

// LoadUsers returns every stored user ordered by ID.
func (db *DB) LoadUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, password, role, section, department, notification_enabled
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Section, &u.Department, &u.NotificationEnabled); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// SaveUsers replaces the stored user collection in one transaction.
func (db *DB) SaveUsers(ctx context.Context, users []*models.User) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO users (id, name, email, password, role, section, department, notification_enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare user insert: %w", err)
		}
		defer stmt.Close()

		for _, u := range users {
			if _, err := stmt.ExecContext(ctx, u.ID, u.Name, u.Email, u.Password, u.Role, u.Section, u.Department, u.NotificationEnabled); err != nil {
				return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
			}
		}
		return nil
	})
}

// LoadBookings returns every stored booking with its attachment, ordered by ID.
func (db *DB) LoadBookings(ctx context.Context) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT b.id, b.room_id, b.user_id, b.user_name, b.user_role, b.category, b.description,
		       b.date, b.start_time, b.end_time, b.status, b.cancellation_reason,
		       b.created_at, b.updated_at, b.version,
		       a.name, a.mime_type, a.content
		FROM bookings b
		LEFT JOIN booking_attachments a ON a.booking_id = b.id
		ORDER BY b.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		var (
			b           models.Booking
			createdAt   sql.NullTime
			updatedAt   sql.NullTime
			attName     sql.NullString
			attMimeType sql.NullString
			attContent  []byte
		)
		if err := rows.Scan(
			&b.ID, &b.RoomID, &b.UserID, &b.UserName, &b.UserRole, &b.Category, &b.Description,
			&b.Date, &b.StartTime, &b.EndTime, &b.Status, &b.CancellationReason,
			&createdAt, &updatedAt, &b.Version,
			&attName, &attMimeType, &attContent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time
		if attName.Valid {
			b.Justification = &models.Attachment{Name: attName.String, MimeType: attMimeType.String, Content: attContent}
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

// SaveBookings replaces the stored booking collection in one transaction.
func (db *DB) SaveBookings(ctx context.Context, bookings []*models.Booking) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
			return fmt.Errorf("failed to clear bookings: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO bookings (
				id, room_id, user_id, user_name, user_role, category, description,
				date, start_time, end_time, status, cancellation_reason,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare booking insert: %w", err)
		}
		defer stmt.Close()

		attStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO booking_attachments (booking_id, name, mime_type, content) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare attachment insert: %w", err)
		}
		defer attStmt.Close()

		for _, b := range bookings {
			if _, err := stmt.ExecContext(ctx,
				b.ID, b.RoomID, b.UserID, b.UserName, b.UserRole, b.Category, b.Description,
				b.Date, b.StartTime, b.EndTime, b.Status, b.CancellationReason,
				b.CreatedAt, b.UpdatedAt, b.Version,
			); err != nil {
				return fmt.Errorf("failed to insert booking %d: %w", b.ID, err)
			}
			if b.Justification == nil {
				continue
			}
			content := b.Justification.Content
			if content == nil {
				content = []byte{}
			}
			if _, err := attStmt.ExecContext(ctx, b.ID, b.Justification.Name, b.Justification.MimeType, content); err != nil {
				return fmt.Errorf("failed to insert attachment for booking %d: %w", b.ID, err)
			}
		}
		return nil
	})
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
