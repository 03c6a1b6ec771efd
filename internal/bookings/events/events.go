// Package events shares booking changes between service instances over Kafka.
// An instance that hears about a change made elsewhere re-reads its backend.
package events

import (
	"context"
	"fmt"

	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer publisher
	source   string
}

// NewKafkaPublisher tags every event with source so the sender can skip its own events.
func NewKafkaPublisher(producer publisher, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	if event.Booking == nil {
		return fmt.Errorf("%s event has no booking", event.Type)
	}
	event.Source = p.source

	msg, err := kafka.NewMessage().
		WithKey(event.Booking.ID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(p.source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Handler re-reads the backend for every booking event published by another instance.
func Handler(source string, r Refresher, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.GetSource() == source {
			return nil
		}

		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("invalid booking event", err)
		}
		switch event.Type {
		case model.EventBookingCreated, model.EventBookingCancelled:
			if event.Booking == nil {
				return kafka.NewPermanentError("booking event without booking", nil)
			}
		default:
			log.Warn("Ignoring unknown booking event", "type", event.Type, "event_id", msg.GetEventID())
			return nil
		}

		if err := r.Refresh(ctx); err != nil {
			return kafka.NewTransientError("refresh after booking event", err)
		}
		log.Info("Snapshot refreshed after remote booking event",
			"type", event.Type,
			"id", event.Booking.ID,
			"source", event.Source,
		)
		return nil
	}
}
