// Package sl содержит вспомогательные атрибуты для log/slog.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
