package notify

import (
	"context"

	"parking-system/internal/services"

	pubnub "github.com/pubnub/go"
)

type publishFunc func(ctx context.Context, channel string, message map[string]any) error

// PubNubFeed pushes facility events to a PubNub channel for remote
// displays and operator dashboards.
type PubNubFeed struct {
	channel string
	publish publishFunc
}

func NewPubNubFeed(pn *pubnub.PubNub, channel string) *PubNubFeed {
	return &PubNubFeed{
		channel: channel,
		publish: func(ctx context.Context, channel string, message map[string]any) error {
			_, _, err := pn.PublishWithContext(ctx).
				Channel(channel).
				Message(message).
				Execute()
			return err
		},
	}
}

func (p *PubNubFeed) Name() string { return "pubnub" }

func (p *PubNubFeed) PublishCapacity(ctx context.Context, freeSlots int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.publish(ctx, p.channel, map[string]any{
		"type":       "capacity_changed",
		"free_slots": freeSlots,
	})
}

func (p *PubNubFeed) PublishBarrier(ctx context.Context, which services.Barrier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.publish(ctx, p.channel, map[string]any{
		"type":    "barrier_open",
		"barrier": string(which),
	})
}
