package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// CreateNote сохраняет заметку и возвращает её с присвоенным ID.
func (s *Storage) CreateNote(ctx context.Context, owner, content string) (*models.Note, error) {
	const op = "storage.CreateNote"

	note := &models.Note{OwnerUsername: owner, Content: content}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO notes (content, owner_username) VALUES ($1, $2) RETURNING id`,
		content, owner,
	).Scan(&note.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return note, nil
}

// ListNotesByOwner возвращает заметки владельца.
func (s *Storage) ListNotesByOwner(ctx context.Context, owner string) ([]*models.Note, error) {
	const op = "storage.ListNotesByOwner"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, content, owner_username FROM notes WHERE owner_username = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := []*models.Note{}
	for rows.Next() {
		var n models.Note
		if err = rows.Scan(&n.ID, &n.Content, &n.OwnerUsername); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notes = append(notes, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

// UpdateNote меняет содержимое заметки владельца.
func (s *Storage) UpdateNote(ctx context.Context, id int64, owner, content string) (*models.Note, error) {
	const op = "storage.UpdateNote"

	note := &models.Note{ID: id, OwnerUsername: owner}
	err := s.DB.QueryRowContext(ctx,
		`UPDATE notes SET content = $1, updated_at = NOW()
		 WHERE id = $2 AND owner_username = $3
		 RETURNING content`,
		content, id, owner,
	).Scan(&note.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err, models.ErrNoteNotFound))
	}
	return note, nil
}

// DeleteNote удаляет заметку владельца.
func (s *Storage) DeleteNote(ctx context.Context, id int64, owner string) error {
	const op = "storage.DeleteNote"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND owner_username = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNoteNotFound)
	}
	return nil
}
