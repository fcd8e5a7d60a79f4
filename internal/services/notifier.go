package services

import (
	"context"

	"github.com/saske7779/Web-app-granja/internal/models"
)

// Notifier receives ledger events after the mutation committed. Delivery is
// fire-and-forget: a failed or slow notification never blocks or rolls back
// a balance change.
type Notifier interface {
	Notify(ctx context.Context, ev models.Event)
}

func dispatch(n Notifier, events ...models.Event) {
	if n == nil {
		return
	}
	for _, ev := range events {
		go n.Notify(context.Background(), ev)
	}
}

func accountEvent(kind models.EventKind, acc *models.Account) models.Event {
	return models.Event{
		Kind:       kind,
		AccountId:  acc.Id.Int64,
		TelegramId: acc.TelegramId,
		Username:   acc.Username,
		FirstName:  acc.FirstName,
		LastName:   acc.LastName,
	}
}
