package notify

import (
	"context"
	"log/slog"

	"github.com/yourorg/assumables-api/internal/events"
)

// Notifier consumes listing.created events and announces them. Today it
// only logs; the email alert the intake workflow used to send would
// hang off the same loop.
type Notifier struct {
	Pub events.Publisher
	Log *slog.Logger
}

func (n *Notifier) Run(ctx context.Context) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	sub := n.Pub.SubscribeListingCreated()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			log.Info("listing created",
				"listing_id", evt.ListingID,
				"property_id", evt.PropertyID,
				"address", evt.Address,
			)
		}
	}
}
