// Package notes реализует заметки, доступные только их владельцу.
// Каждое изменение пишется в аудит-лог.
package notes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/secure-notes/internal/models"
)

// Repository описывает контракт хранилища заметок.
type Repository interface {
	CreateNote(ctx context.Context, owner, content string) (*models.Note, error)
	ListNotesByOwner(ctx context.Context, owner string) ([]*models.Note, error)
	UpdateNote(ctx context.Context, id int64, owner, content string) (*models.Note, error)
	DeleteNote(ctx context.Context, id int64, owner string) error
}

// Service управляет заметками пользователя.
type Service struct {
	repo  Repository
	audit *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		audit: log.With(slog.String("component", "audit")),
	}
}

// Create сохраняет заметку пользователя username.
func (s *Service) Create(ctx context.Context, username, content string) (*models.Note, error) {
	const op = "services.notes.Create"

	note, err := s.repo.CreateNote(ctx, username, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.audit.Info("note created", slog.String("username", username), slog.Int64("note_id", note.ID))
	return note, nil
}

// List возвращает заметки пользователя.
func (s *Service) List(ctx context.Context, username string) ([]*models.Note, error) {
	const op = "services.notes.List"

	notes, err := s.repo.ListNotesByOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

// Update заменяет текст заметки. Чужая или несуществующая заметка даёт ErrNoteNotFound.
func (s *Service) Update(ctx context.Context, username string, id int64, content string) (*models.Note, error) {
	const op = "services.notes.Update"

	note, err := s.repo.UpdateNote(ctx, id, username, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.audit.Info("note updated", slog.String("username", username), slog.Int64("note_id", id))
	return note, nil
}

// Delete удаляет заметку пользователя.
func (s *Service) Delete(ctx context.Context, username string, id int64) error {
	const op = "services.notes.Delete"

	if err := s.repo.DeleteNote(ctx, id, username); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.audit.Info("note deleted", slog.String("username", username), slog.Int64("note_id", id))
	return nil
}
