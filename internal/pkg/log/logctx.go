// Package log прокидывает request-scoped *slog.Logger через context.Context:
// middleware привязывает логгер с атрибутами запроса, нижние слои достают
// его, ничего не зная о транспорте.
package log

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Into возвращает контекст с привязанным логгером.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// From возвращает логгер из контекста. Если логгер не привязан
// (фоновые задачи, тесты), используется slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
