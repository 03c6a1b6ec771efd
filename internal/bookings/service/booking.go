package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/scheduler"
	"roombook/internal/bookings/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/grid"
	"roombook/pkg/logger"
	"roombook/pkg/metrics"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
	"roombook/pkg/week"
)

// BookingService is the authoritative in-memory view of all bookings. Every
// change goes through it, and observers see the full set after each change.
type BookingService interface {
	List(ctx context.Context) []*model.Booking
	Get(ctx context.Context, id string) (*model.Booking, error)
	Add(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Remove(ctx context.Context, id string) error
	Week(ctx context.Context, start string) (*model.WeekView, error)
	Subscribe(fn func([]*model.Booking)) (unsubscribe func())
	Refresh(ctx context.Context) error
	Start(ctx context.Context) error
	Stop()
	Ping(ctx context.Context) error
	Grid() *grid.Grid
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

type Options struct {
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	grid      *grid.Grid
	loc       *time.Location
	log       *logger.Logger
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time

	// writeMu orders every snapshot change, and the observer calls that
	// follow it. Observers must not call back into Add or Remove.
	writeMu sync.Mutex

	mu    sync.RWMutex
	index *scheduler.Index

	subsMu  sync.Mutex
	subs    map[int]func([]*model.Booking)
	nextSub int

	stopWatch func()
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	cfg *config.Config,
	opts Options,
) BookingService {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &bookingService{
		repo:      repo,
		validator: validator,
		grid:      cfg.Grid,
		loc:       loc,
		log:       cfg.Log,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		now:       opts.Now,
		index:     scheduler.NewIndex(nil),
		subs:      make(map[int]func([]*model.Booking)),
	}
}

func (s *bookingService) Grid() *grid.Grid {
	return s.grid
}

func (s *bookingService) List(context.Context) []*model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// snapshotLocked returns copies ordered by date, hour and room display order.
func (s *bookingService) snapshotLocked() []*model.Booking {
	out := model.CloneAll(s.index.All())
	s.sortBookings(out)
	return out
}

func (s *bookingService) sortBookings(bookings []*model.Booking) {
	roomRank := func(room string) int {
		if i := s.grid.RoomIndex(room); i >= 0 {
			return i
		}
		return len(s.grid.Rooms())
	}
	slices.SortFunc(bookings, func(a, b *model.Booking) int {
		switch {
		case a.Date != b.Date:
			return cmp.Compare(a.Date, b.Date)
		case a.Hour != b.Hour:
			return a.Hour - b.Hour
		case a.Room != b.Room:
			if d := roomRank(a.Room) - roomRank(b.Room); d != 0 {
				return d
			}
			return cmp.Compare(a.Room, b.Room)
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	})
}

func (s *bookingService) Get(_ context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.index.Get(id)
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return b.Clone(), nil
}

func (s *bookingService) Add(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}

	candidate := *req
	sanitizer.SanitizeBookingRequest(&candidate)
	if err := s.validate(&candidate); err != nil {
		return nil, err
	}
	key := scheduler.KeyOfRequest(&candidate)

	booking, err := s.commitAdd(ctx, key, &candidate)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.EventBookingCreated, booking)
	return booking.Clone(), nil
}

// commitAdd checks the slot and stores the booking under writeMu. Observers
// run before the lock is released; the event is published by the caller.
func (s *bookingService) commitAdd(ctx context.Context, key scheduler.SlotKey, candidate *model.BookingRequest) (*model.Booking, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	err := s.index.Check(key)
	s.mu.RUnlock()
	if err != nil {
		return nil, s.conflict(err)
	}

	holders, err := s.repo.FindBySlot(ctx, key.Room, key.Date, key.Hour)
	if err != nil {
		return nil, s.backendError("find", err)
	}
	if err := scheduler.Check(holders, key); err != nil {
		return nil, s.conflict(err)
	}

	booking := candidate.ToBooking()
	if err := s.repo.Create(ctx, booking); err != nil {
		var conflict *bookingserrors.ConflictError
		if errors.As(err, &conflict) {
			return nil, s.conflict(conflict)
		}
		return nil, s.backendError("create", err)
	}

	s.mu.Lock()
	s.index.Put(booking.Clone())
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.BookingsCreated.Inc()
	s.metrics.BookingsActive.Set(float64(len(snapshot)))
	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"room", booking.Room,
		"date", booking.Date,
		"hour", booking.Hour,
	)

	s.notify(snapshot)
	return booking, nil
}

func (s *bookingService) validate(req *model.BookingRequest) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	s.metrics.ValidationFailed.Inc()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.log.Warn("Booking validation failed", "error", verrs.Error())
		return apperrors.Validation("Invalid booking", verrs.Details())
	}
	s.log.Error("Booking validator failed", "error", err)
	return apperrors.Internal("Failed to validate booking", err)
}

func (s *bookingService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.commitRemove(ctx, id)
	if err != nil {
		return err
	}

	s.publish(ctx, model.EventBookingCancelled, existing)
	return nil
}

func (s *bookingService) commitRemove(ctx context.Context, id string) (*model.Booking, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	existing, ok := s.index.Get(id)
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			s.log.Warn("Backend has no such booking", "id", id)
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, s.backendError("delete", err)
	}

	s.mu.Lock()
	s.index.Delete(id)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.BookingsCancelled.Inc()
	s.metrics.BookingsActive.Set(float64(len(snapshot)))
	s.log.Info("Booking cancelled successfully",
		"id", id,
		"room", existing.Room,
		"date", existing.Date,
		"hour", existing.Hour,
	)

	s.notify(snapshot)
	return existing, nil
}

func (s *bookingService) Week(ctx context.Context, start string) (*model.WeekView, error) {
	anchor := week.Today(s.now(), s.loc)
	if start != "" {
		d, err := week.ParseDate(start)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		anchor = d
	}

	dates := week.Of(anchor)
	days := week.Strings(dates)
	rooms := s.grid.Rooms()

	s.mu.RLock()
	defer s.mu.RUnlock()

	view := &model.WeekView{
		Start:    anchor.String(),
		Previous: week.Previous(anchor).String(),
		Next:     week.Next(anchor).String(),
		Dates:    days,
		Rooms:    rooms,
		Bookings: week.Filter(s.snapshotLocked(), dates),
	}

	for _, hour := range s.grid.Hours() {
		row := model.WeekRow{
			Hour:  hour,
			Label: grid.SlotLabel(hour),
			Days:  make([]model.DayCell, 0, len(days)),
		}
		for _, day := range days {
			cell := model.DayCell{Date: day, Slots: make([]model.SlotCell, 0, len(rooms))}
			for _, room := range rooms {
				slot := model.SlotCell{Room: room}
				if b, ok := s.index.Lookup(scheduler.SlotKey{Room: room, Date: day, Hour: hour}); ok {
					slot.Booking = b.Clone()
				}
				cell.Slots = append(cell.Slots, slot)
			}
			row.Days = append(row.Days, cell)
		}
		view.Rows = append(view.Rows, row)
	}

	return view, nil
}

// Subscribe registers fn for every future snapshot. fn must not block for long.
func (s *bookingService) Subscribe(fn func([]*model.Booking)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *bookingService) notify(snapshot []*model.Booking) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func([]*model.Booking), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(model.CloneAll(snapshot))
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	event := model.BookingEvent{
		Type:       eventType,
		Booking:    b.Clone(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("Failed to publish booking event", "type", eventType, "id", b.ID, "error", err)
	}
}

func (s *bookingService) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return s.backendError("refresh", err)
	}
	s.replaceLocked(bookings, "refresh")
	return nil
}

func (s *bookingService) onRemoteChange(bookings []*model.Booking) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.replaceLocked(bookings, "watch")
}

// replaceLocked swaps in a backend view. If the backend holds two bookings
// for one slot, the earliest created keeps it; the rest are logged and hidden.
// Callers hold writeMu.
func (s *bookingService) replaceLocked(bookings []*model.Booking, source string) {
	ordered := model.CloneAll(bookings)
	slices.SortStableFunc(ordered, func(a, b *model.Booking) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	idx := scheduler.NewIndex(nil)
	for _, b := range ordered {
		if holder, taken := idx.Lookup(scheduler.KeyOf(b)); taken {
			s.log.Warn("Backend holds a second booking for an occupied slot",
				"id", b.ID,
				"holder_id", holder.ID,
				"room", b.Room,
				"date", b.Date,
				"hour", b.Hour,
			)
			continue
		}
		idx.Put(b)
	}

	s.mu.Lock()
	s.index = idx
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.Resyncs.WithLabelValues(source).Inc()
	s.metrics.BookingsActive.Set(float64(len(snapshot)))
	s.log.Debug("Booking snapshot replaced", "source", source, "count", len(snapshot))
	s.notify(snapshot)
}

// Start loads the backend and, when it can push changes, follows them until Stop.
func (s *bookingService) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	watcher, ok := s.repo.(repository.Watcher)
	if !ok {
		s.log.Info("Booking backend does not push changes; relying on refresh")
		return nil
	}

	stop, err := watcher.Watch(context.WithoutCancel(ctx), s.onRemoteChange)
	if err != nil {
		s.log.Warn("Booking backend watch unavailable; relying on refresh", "error", err)
		return nil
	}
	s.stopWatch = stop
	s.log.Info("Following booking backend changes")
	return nil
}

func (s *bookingService) Stop() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
}

func (s *bookingService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return apperrors.Unavailable("Booking storage", err)
	}
	return nil
}

func (s *bookingService) conflict(err error) error {
	s.metrics.BookingConflicts.Inc()

	var conflict *bookingserrors.ConflictError
	if !errors.As(err, &conflict) {
		return apperrors.Conflict("Slot already booked", err)
	}
	s.log.Warn("Booking rejected: slot already booked",
		"room", conflict.Room,
		"date", conflict.Date,
		"hour", conflict.Hour,
		"existing_id", conflict.ExistingID,
	)
	return apperrors.Conflict("Slot already booked", conflict).WithDetails(conflict.Details())
}

func (s *bookingService) backendError(op string, err error) error {
	s.metrics.BackendErrors.WithLabelValues(op).Inc()
	s.log.Error("Booking backend operation failed", "operation", op, "error", err)

	if errors.Is(err, bookingserrors.ErrBackendUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Unavailable("Booking storage", err)
	}
	return apperrors.Internal("Failed to "+op+" booking", err)
}
