package port

import "context"

// Notifier уведомляет внешний канал о завершённых с браком инспекциях.
type Notifier interface {
	NotifyFailure(ctx context.Context, barcode, summary string) error
}
