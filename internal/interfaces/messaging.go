package interfaces

import "context"

// EventPublisher публикует доменные события в очередь сообщений.
// Реализации не должны ронять запрос при недоступности брокера:
// ошибка публикации логируется вызывающей стороной и не прерывает операцию.
type EventPublisher interface {
	// PublishSettingsInvalidated сообщает, что снапшот настроек был сброшен.
	PublishSettingsInvalidated(ctx context.Context, changedKey string) error
	// PublishFeedbackReceived сообщает о новом отзыве, ожидающем модерации.
	PublishFeedbackReceived(ctx context.Context, commentUUID string, churchID *int64) error
	// Close освобождает канал брокера.
	Close() error
}
