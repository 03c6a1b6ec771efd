package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/config"
	"roombook/pkg/grid"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/week"

	"github.com/google/uuid"
)

type LocalOptions struct {
	// Seed writes the demo bookings when the file does not exist yet.
	Seed     bool
	Location *time.Location
	Now      func() time.Time
	Log      *logger.Logger
}

// LocalBookingRepository keeps every booking in one JSON file. The mutex
// covers check and write, so within one process the slot rule is exact.
type LocalBookingRepository struct {
	mu       sync.Mutex
	path     string
	bookings []*model.Booking
	now      func() time.Time
	log      *logger.Logger
}

func NewLocalBookingRepository(cfg *config.Config) (*LocalBookingRepository, error) {
	return OpenLocal(cfg.LocalStorePath, LocalOptions{
		Seed:     cfg.LocalSeed,
		Location: cfg.Location,
		Log:      cfg.Log,
	})
}

func OpenLocal(path string, opts LocalOptions) (*LocalBookingRepository, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}

	r := &LocalBookingRepository{
		path: path,
		now:  opts.Now,
		log:  opts.Log,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &r.bookings); err != nil {
			return nil, fmt.Errorf("failed to parse booking file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		r.bookings = []*model.Booking{}
		if opts.Seed {
			r.bookings = seedBookings(week.Today(opts.Now(), opts.Location).String(), opts.Now())
			if err := r.persist(r.bookings); err != nil {
				return nil, err
			}
			r.log.Info("Seeded local booking file", "path", path, "count", len(r.bookings))
		}
	default:
		return nil, fmt.Errorf("failed to read booking file %s: %w", path, err)
	}

	r.log.Info("Local booking store opened", "path", path, "count", len(r.bookings))
	return r, nil
}

func seedBookings(today string, now time.Time) []*model.Booking {
	seed := []struct {
		room string
		hour int
		name string
	}{
		{grid.RoomBesar, 9, "Alice"},
		{grid.RoomSedang, 11, "Bob"},
		{grid.RoomKecil, 9, "Charlie"},
	}

	out := make([]*model.Booking, 0, len(seed))
	for _, s := range seed {
		out = append(out, &model.Booking{
			ID:        uuid.NewString(),
			Room:      s.room,
			Date:      today,
			Hour:      s.hour,
			BookedBy:  s.name,
			CreatedAt: now.UTC().Truncate(time.Millisecond),
		})
	}
	return out
}

func (r *LocalBookingRepository) FindAll(context.Context) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return model.CloneAll(r.bookings), nil
}

func (r *LocalBookingRepository) FindBySlot(_ context.Context, room, date string, hour int) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.Room == room && b.Date == date && b.Hour == hour {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (r *LocalBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.Room == booking.Room && b.Date == booking.Date && b.Hour == booking.Hour {
			return &bookingserrors.ConflictError{Room: b.Room, Date: b.Date, Hour: b.Hour, ExistingID: b.ID}
		}
	}

	stored := booking.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	next := append(model.CloneAll(r.bookings), stored)
	if err := r.persist(next); err != nil {
		return err
	}
	r.bookings = next

	booking.ID = stored.ID
	booking.CreatedAt = stored.CreatedAt
	return nil
}

func (r *LocalBookingRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]*model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if b.ID != id {
			next = append(next, b)
		}
	}
	if len(next) == len(r.bookings) {
		return bookingserrors.ErrNotFound
	}

	if err := r.persist(next); err != nil {
		return err
	}
	r.bookings = next
	return nil
}

func (r *LocalBookingRepository) Ping(context.Context) error {
	dir := filepath.Dir(r.path)
	if _, err := os.Stat(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return bookingserrors.Unavailable("stat booking directory", err)
	}
	return nil
}

func (r *LocalBookingRepository) Close(context.Context) error {
	return nil
}

// persist replaces the file atomically: readers see the old or the new set, never a mix.
func (r *LocalBookingRepository) persist(bookings []*model.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bookings: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return bookingserrors.Unavailable("create booking directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return bookingserrors.Unavailable("create temp booking file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return bookingserrors.Unavailable("write booking file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return bookingserrors.Unavailable("sync booking file", err)
	}
	if err := tmp.Close(); err != nil {
		return bookingserrors.Unavailable("close booking file", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return bookingserrors.Unavailable("replace booking file", err)
	}
	return nil
}
