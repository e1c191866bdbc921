// Package logger собирает slog.Logger под окружение запуска.
package logger

import (
	"io"
	"log/slog"

	"github.com/magabrotheeeer/secure-notes/internal/config"
)

// New возвращает JSON-логгер уровня Info для prod, иначе текстовый уровня Debug.
func New(env string, w io.Writer) *slog.Logger {
	if env == config.EnvProd {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
