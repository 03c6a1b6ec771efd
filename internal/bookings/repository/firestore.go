package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/config"
	"roombook/pkg/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore field names, shared with the web client that reads the same collection.
const (
	fieldRoom = "room"
	fieldDate = "date"
	fieldHour = "time"
)

type FirestoreBookingRepository struct {
	cfg        *config.Config
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewFirestoreBookingRepository(cfg *config.Config) *FirestoreBookingRepository {
	return &FirestoreBookingRepository{
		cfg:        cfg,
		client:     cfg.Client.Firestore,
		collection: cfg.Client.Firestore.Collection(cfg.FirestoreCollection),
	}
}

func (r *FirestoreBookingRepository) ordered() firestore.Query {
	return r.collection.OrderBy(fieldHour, firestore.Asc).OrderBy(fieldRoom, firestore.Asc)
}

func (r *FirestoreBookingRepository) slotQuery(room, date string, hour int) firestore.Query {
	return r.collection.
		Where(fieldRoom, "==", room).
		Where(fieldDate, "==", date).
		Where(fieldHour, "==", hour)
}

func (r *FirestoreBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	docs, err := r.ordered().Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError("find bookings", err)
	}
	return decodeDocuments(docs)
}

func (r *FirestoreBookingRepository) FindBySlot(ctx context.Context, room, date string, hour int) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	docs, err := r.slotQuery(room, date, hour).Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError("find bookings by slot", err)
	}
	return decodeDocuments(docs)
}

// Create checks the slot and writes the document in one transaction, so two
// clients racing for the same slot cannot both succeed.
func (r *FirestoreBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ref := r.collection.NewDoc()
	stored := booking.Clone()
	stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		holders, err := tx.Documents(r.slotQuery(booking.Room, booking.Date, booking.Hour)).GetAll()
		if err != nil {
			return err
		}
		if len(holders) > 0 {
			return &bookingserrors.ConflictError{
				Room:       booking.Room,
				Date:       booking.Date,
				Hour:       booking.Hour,
				ExistingID: holders[0].Ref.ID,
			}
		}
		return tx.Create(ref, stored)
	})
	if err != nil {
		var conflict *bookingserrors.ConflictError
		if errors.As(err, &conflict) {
			return conflict
		}
		return firestoreError("create booking", err)
	}

	booking.ID = ref.ID
	booking.CreatedAt = stored.CreatedAt
	return nil
}

func (r *FirestoreBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return bookingserrors.ErrNotFound
		}
		return firestoreError("delete booking", err)
	}
	return nil
}

func (r *FirestoreBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	iter := r.collection.Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return bookingserrors.Unavailable("ping firestore", err)
	}
	return nil
}

// Close is a no-op: the shared client is closed by config.GracefulShutdown.
func (r *FirestoreBookingRepository) Close(context.Context) error {
	return nil
}

// Watch streams query snapshots of the whole collection ordered by hour and room.
func (r *FirestoreBookingRepository) Watch(ctx context.Context, onChange func([]*model.Booking)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snapshots := r.ordered().Snapshots(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled && !errors.Is(err, context.Canceled) {
					r.cfg.Log.Error("Firestore snapshot listener stopped", "error", err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				r.cfg.Log.Error("Failed to read Firestore snapshot", "error", err)
				continue
			}
			bookings, err := decodeDocuments(docs)
			if err != nil {
				r.cfg.Log.Error("Failed to decode Firestore snapshot", "error", err)
				continue
			}
			onChange(bookings)
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}, nil
}

func decodeDocuments(docs []*firestore.DocumentSnapshot) ([]*model.Booking, error) {
	bookings := make([]*model.Booking, 0, len(docs))
	for _, doc := range docs {
		var b model.Booking
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking %s: %w", doc.Ref.ID, err)
		}
		b.ID = doc.Ref.ID
		bookings = append(bookings, &b)
	}
	return bookings, nil
}

func firestoreError(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.PermissionDenied, codes.Unauthenticated, codes.DeadlineExceeded:
		return bookingserrors.Unavailable(op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return bookingserrors.Unavailable(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
