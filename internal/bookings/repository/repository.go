package repository

import (
	"context"
	"fmt"

	"roombook/pkg/config"
	"roombook/pkg/model"
)

// BookingRepository is a persistence backend. Create must refuse a slot that
// is already held, returning *bookingserrors.ConflictError, whenever the
// backend can decide that atomically.
type BookingRepository interface {
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindBySlot(ctx context.Context, room, date string, hour int) ([]*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Watcher is implemented by backends that push remote changes. onChange
// receives the complete booking set each time.
type Watcher interface {
	Watch(ctx context.Context, onChange func([]*model.Booking)) (stop func(), err error)
}

// New opens the backend selected by cfg and returns its repository.
func New(ctx context.Context, cfg *config.Config) (BookingRepository, error) {
	switch backend := cfg.Backend(); backend {
	case config.BackendMongo:
		cfg.SetMongo()
		repo := NewMongoBookingRepository(cfg)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendFirestore:
		cfg.SetFirestore()
		return NewFirestoreBookingRepository(cfg), nil
	case config.BackendLocal:
		return NewLocalBookingRepository(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
