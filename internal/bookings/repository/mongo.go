package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	mongoMigration "roombook/internal/migrations/mongo"
	"roombook/pkg/config"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) *MongoBookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &MongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(mongoMigration.BookingsCollection),
	}
}

// withTimeout never extends a deadline the caller already set.
func (r *MongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// EnsureIndexes creates the unique slot index if the migration job has not run.
func (r *MongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoConnTimeout)
	defer cancel()

	if err := mongoMigration.EnsureIndexes(ctx, r.collection, []mongo.IndexModel{mongoMigration.SlotIndex}); err != nil {
		return mongoError("ensure booking indexes", err)
	}
	return nil
}

func (r *MongoBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{})
}

func (r *MongoBookingRepository) FindBySlot(ctx context.Context, room, date string, hour int) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"room": room, "date": date, "hour": hour})
}

func (r *MongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "hour", Value: 1},
		{Key: "room", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoError("find bookings", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, mongoError("decode bookings", err)
	}

	return bookings, nil
}

func (r *MongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.ID = ""
	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			conflict := &bookingserrors.ConflictError{Room: booking.Room, Date: booking.Date, Hour: booking.Hour}
			if holders, findErr := r.find(ctx, bson.M{"room": booking.Room, "date": booking.Date, "hour": booking.Hour}); findErr == nil && len(holders) > 0 {
				conflict.ExistingID = holders[0].ID
			}
			return conflict
		}
		return mongoError("create booking", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *MongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return mongoError("delete booking", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *MongoBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if err := r.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return bookingserrors.Unavailable("ping mongo", err)
	}
	return nil
}

// Close is a no-op: the shared client is disconnected by config.GracefulShutdown.
func (r *MongoBookingRepository) Close(context.Context) error {
	return nil
}

// Watch follows the collection's change stream and re-reads the full set on
// every event. Change streams need a replica set; on a standalone server the
// error is returned and the caller runs without push.
func (r *MongoBookingRepository) Watch(ctx context.Context, onChange func([]*model.Booking)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, mongoError("open change stream", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			bookings, err := r.FindAll(ctx)
			if err != nil {
				r.cfg.Log.Error("Failed to re-read bookings after change event", "error", err)
				continue
			}
			onChange(bookings)
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			r.cfg.Log.Error("Booking change stream stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func mongoError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return bookingserrors.Unavailable(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
