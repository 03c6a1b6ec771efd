package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/scheduler"
	"roombook/internal/bookings/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/grid"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type fakeRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int

	findAllFunc    func(ctx context.Context) ([]*model.Booking, error)
	findBySlotFunc func(ctx context.Context, room, date string, hour int) ([]*model.Booking, error)
	createFunc     func(ctx context.Context, b *model.Booking) error
	deleteFunc     func(ctx context.Context, id string) error

	createCalls int
}

func newFakeRepo(seed ...*model.Booking) *fakeRepo {
	r := &fakeRepo{bookings: make(map[string]*model.Booking)}
	for _, b := range seed {
		r.bookings[b.ID] = b.Clone()
	}
	return r
}

func (r *fakeRepo) FindAll(ctx context.Context) ([]*model.Booking, error) {
	if r.findAllFunc != nil {
		return r.findAllFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (r *fakeRepo) FindBySlot(ctx context.Context, room, date string, hour int) ([]*model.Booking, error) {
	if r.findBySlotFunc != nil {
		return r.findBySlotFunc(ctx, room, date, hour)
	}
	return []*model.Booking{}, nil
}

func (r *fakeRepo) Create(ctx context.Context, b *model.Booking) error {
	r.mu.Lock()
	r.createCalls++
	r.mu.Unlock()
	if r.createFunc != nil {
		return r.createFunc(ctx, b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = fmt.Sprintf("bk-%d", r.nextID)
	b.CreatedAt = time.Date(2024, 6, 15, 10, 0, r.nextID, 0, time.UTC)
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if r.deleteFunc != nil {
		return r.deleteFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *fakeRepo) Ping(context.Context) error  { return nil }
func (r *fakeRepo) Close(context.Context) error { return nil }

type watchingRepo struct {
	*fakeRepo
	onChange func([]*model.Booking)
	stopped  bool
}

func (r *watchingRepo) Watch(_ context.Context, onChange func([]*model.Booking)) (func(), error) {
	r.onChange = onChange
	return func() { r.stopped = true }, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error

	// When set, Publish signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, e model.BookingEvent) error {
	if p.release != nil {
		p.started <- struct{}{}
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

var testNow = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

func newTestService(t *testing.T, repo repository.BookingRepository) (BookingService, *recordingPublisher) {
	t.Helper()

	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:      log,
		Grid:     grid.Default(),
		Location: time.UTC,
	}
	v := validator.NewBookingValidator(log, cfg.Grid, validator.Options{Location: time.UTC, Now: testNow})
	pub := &recordingPublisher{}

	svc := NewBookingService(repo, v, cfg, Options{Publisher: pub, Now: testNow})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, pub
}

func request(room, date string, hour int, name string) *model.BookingRequest {
	return model.NewBookingRequest(room, date, hour, name)
}

func assertCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("error code = %s, want %s (err: %v)", appErr.Code, code, err)
	}
	return appErr
}

func assertUniqueSlots(t *testing.T, bookings []*model.Booking) {
	t.Helper()
	seen := map[scheduler.SlotKey]string{}
	for _, b := range bookings {
		key := scheduler.KeyOf(b)
		if other, dup := seen[key]; dup {
			t.Fatalf("bookings %s and %s share slot %+v", other, b.ID, key)
		}
		seen[key] = b.ID
	}
}

// ────────────────────────────────────────────────
// Add
// ────────────────────────────────────────────────

func TestAdd_Success(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, pub := newTestService(t, repo)

	var observed [][]*model.Booking
	unsubscribe := svc.Subscribe(func(b []*model.Booking) { observed = append(observed, b) })
	defer unsubscribe()

	got, err := svc.Add(ctx, request("Besar", "2024-06-20", 9, "  Alice  "))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if got.ID == "" {
		t.Error("Add() should return the backend-assigned ID")
	}
	if got.BookedBy != "Alice" {
		t.Errorf("BookedBy = %q, want trimmed %q", got.BookedBy, "Alice")
	}

	list := svc.List(ctx)
	if len(list) != 1 || list[0].ID != got.ID {
		t.Fatalf("List() = %+v, want the new booking", list)
	}
	if len(observed) != 1 || len(observed[0]) != 1 {
		t.Errorf("observer saw %d snapshots, want 1 with 1 booking", len(observed))
	}
	if len(pub.events) != 1 || pub.events[0].Type != model.EventBookingCreated || pub.events[0].Booking.ID != got.ID {
		t.Errorf("published events = %+v", pub.events)
	}
}

func TestAdd_ConflictRejected(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	first, err := svc.Add(ctx, request("Besar", "2024-06-20", 9, "Alice"))
	if err != nil {
		t.Fatalf("first Add() error: %v", err)
	}

	_, err = svc.Add(ctx, request("Besar", "2024-06-20", 9, "Bob"))
	appErr := assertCode(t, err, apperrors.CodeConflict)
	if appErr.Details["existing_id"] != first.ID || appErr.Details["room"] != "Besar" || appErr.Details["hour"] != 9 {
		t.Errorf("conflict details = %v", appErr.Details)
	}
	if !errors.Is(err, bookingserrors.ErrConflict) {
		t.Error("conflict should still match bookingserrors.ErrConflict")
	}

	if n := len(svc.List(ctx)); n != 1 {
		t.Errorf("snapshot size = %d, want 1", n)
	}
	if repo.createCalls != 1 {
		t.Errorf("backend Create called %d times, want 1", repo.createCalls)
	}
}

func TestAdd_NeighbouringSlotsAreFree(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newFakeRepo())

	reqs := []*model.BookingRequest{
		request("Besar", "2024-06-20", 9, "Alice"),
		request("Sedang", "2024-06-20", 9, "Bob"),
		request("Besar", "2024-06-20", 10, "Carol"),
		request("Besar", "2024-06-21", 9, "Dan"),
	}
	for _, r := range reqs {
		if _, err := svc.Add(ctx, r); err != nil {
			t.Fatalf("Add(%+v) error: %v", r, err)
		}
	}
	if n := len(svc.List(ctx)); n != len(reqs) {
		t.Errorf("snapshot size = %d, want %d", n, len(reqs))
	}
}

func TestAdd_ConflictFromFreshBackendRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.findBySlotFunc = func(_ context.Context, room, date string, hour int) ([]*model.Booking, error) {
		return []*model.Booking{{ID: "remote-1", Room: room, Date: date, Hour: hour, BookedBy: "Elsewhere"}}, nil
	}
	svc, pub := newTestService(t, repo)

	_, err := svc.Add(ctx, request("Kecil", "2024-06-20", 11, "Alice"))
	appErr := assertCode(t, err, apperrors.CodeConflict)
	if appErr.Details["existing_id"] != "remote-1" {
		t.Errorf("existing_id = %v, want remote-1", appErr.Details["existing_id"])
	}
	if repo.createCalls != 0 {
		t.Error("Create must not run when the backend already holds the slot")
	}
	if len(svc.List(ctx)) != 0 || len(pub.events) != 0 {
		t.Error("a rejected add must not change the snapshot or publish")
	}
}

func TestAdd_ConflictFromAtomicCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.createFunc = func(_ context.Context, b *model.Booking) error {
		return &bookingserrors.ConflictError{Room: b.Room, Date: b.Date, Hour: b.Hour, ExistingID: "raced"}
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Add(ctx, request("Besar", "2024-06-20", 9, "Alice"))
	assertCode(t, err, apperrors.CodeConflict)
	if len(svc.List(ctx)) != 0 {
		t.Error("snapshot should be unchanged")
	}
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *model.BookingRequest
	}{
		{name: "blank name", req: request("Besar", "2024-06-20", 9, "   ")},
		{name: "unknown room", req: request("Aula", "2024-06-20", 9, "Alice")},
		{name: "hour outside grid", req: request("Besar", "2024-06-20", 18, "Alice")},
		{name: "invalid date", req: request("Besar", "2024-02-30", 9, "Alice")},
		{name: "past date", req: request("Besar", "2024-06-14", 9, "Alice")},
		{name: "missing hour", req: &model.BookingRequest{Room: "Besar", Date: "2024-06-20", BookedBy: "Alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc, _ := newTestService(t, repo)

			_, err := svc.Add(context.Background(), tt.req)
			assertCode(t, err, apperrors.CodeValidation)
			if repo.createCalls != 0 {
				t.Error("invalid requests must not reach the backend")
			}
		})
	}
}

func TestAdd_Nil(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())
	_, err := svc.Add(context.Background(), nil)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestAdd_BackendFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "unavailable", err: bookingserrors.Unavailable("create booking", errors.New("dial tcp: refused")), wantCode: apperrors.CodeUnavailable},
		{name: "timeout", err: fmt.Errorf("create: %w", context.DeadlineExceeded), wantCode: apperrors.CodeUnavailable},
		{name: "other", err: errors.New("document too large"), wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.createFunc = func(context.Context, *model.Booking) error { return tt.err }
			svc, pub := newTestService(t, repo)

			_, err := svc.Add(context.Background(), request("Besar", "2024-06-20", 9, "Alice"))
			assertCode(t, err, tt.wantCode)
			if len(svc.List(context.Background())) != 0 || len(pub.events) != 0 {
				t.Error("a failed add must leave the snapshot unchanged")
			}
		})
	}
}

func TestAdd_PublishFailureDoesNotFailAdd(t *testing.T) {
	svc, pub := newTestService(t, newFakeRepo())
	pub.err = errors.New("broker down")

	if _, err := svc.Add(context.Background(), request("Besar", "2024-06-20", 9, "Alice")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
}

func TestAdd_SlowPublisherDoesNotBlockWrites(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t, newFakeRepo())
	pub.started = make(chan struct{}, 4)
	pub.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Add(ctx, request("Besar", "2024-06-20", 9, "Alice"))
		done <- err
	}()

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first publish never started")
	}

	// The first add is stuck publishing; the next write must still commit.
	second := make(chan error, 1)
	go func() {
		_, err := svc.Add(ctx, request("Kecil", "2024-06-20", 9, "Bob"))
		second <- err
	}()

	select {
	case <-pub.started:
	case err := <-second:
		t.Fatalf("second add returned before publishing: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("second add was blocked by the pending publish")
	}
	if n := len(svc.List(ctx)); n != 2 {
		t.Errorf("snapshot size while publishing = %d, want 2", n)
	}

	close(pub.release)
	for _, ch := range []chan error{done, second} {
		if err := <-ch; err != nil {
			t.Errorf("Add() error: %v", err)
		}
	}
	if len(pub.events) != 2 {
		t.Errorf("published %d events, want 2", len(pub.events))
	}
}

func TestAdd_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newFakeRepo())

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Add(ctx, request("Besar", "2024-06-20", 9, fmt.Sprintf("user-%d", i))); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successful adds = %d, want exactly 1", successes)
	}
	if n := len(svc.List(ctx)); n != 1 {
		t.Errorf("snapshot size = %d, want 1", n)
	}
}

// ────────────────────────────────────────────────
// Remove
// ────────────────────────────────────────────────

func TestRemove_ThenSecondRemoveNotFound(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t, newFakeRepo())

	b, err := svc.Add(ctx, request("Sedang", "2024-06-20", 11, "Bob"))
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := svc.Remove(ctx, b.ID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if n := len(svc.List(ctx)); n != 0 {
		t.Errorf("snapshot size after remove = %d, want 0", n)
	}
	if last := pub.events[len(pub.events)-1]; last.Type != model.EventBookingCancelled || last.Booking.ID != b.ID {
		t.Errorf("last event = %+v, want cancellation of %s", last, b.ID)
	}

	assertCode(t, svc.Remove(ctx, b.ID), apperrors.CodeNotFound)

	if _, err := svc.Add(ctx, request("Sedang", "2024-06-20", 11, "Carol")); err != nil {
		t.Errorf("freed slot should be bookable again: %v", err)
	}
}

func TestRemove_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeRepo())
		assertCode(t, svc.Remove(ctx, ""), apperrors.CodeInvalidInput)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeRepo())
		assertCode(t, svc.Remove(ctx, "missing"), apperrors.CodeNotFound)
	})

	t.Run("backend reports absence", func(t *testing.T) {
		repo := newFakeRepo(&model.Booking{ID: "b-1", Room: "Besar", Date: "2024-06-20", Hour: 9, BookedBy: "Alice"})
		repo.deleteFunc = func(context.Context, string) error { return bookingserrors.ErrNotFound }
		svc, _ := newTestService(t, repo)
		assertCode(t, svc.Remove(ctx, "b-1"), apperrors.CodeNotFound)
	})

	t.Run("backend unavailable keeps snapshot", func(t *testing.T) {
		repo := newFakeRepo(&model.Booking{ID: "b-1", Room: "Besar", Date: "2024-06-20", Hour: 9, BookedBy: "Alice"})
		repo.deleteFunc = func(context.Context, string) error {
			return bookingserrors.Unavailable("delete booking", errors.New("offline"))
		}
		svc, _ := newTestService(t, repo)
		assertCode(t, svc.Remove(ctx, "b-1"), apperrors.CodeUnavailable)
		if len(svc.List(ctx)) != 1 {
			t.Error("a failed remove must leave the snapshot unchanged")
		}
	})
}

// ────────────────────────────────────────────────
// List, Get, uniqueness
// ────────────────────────────────────────────────

func TestList_Order(t *testing.T) {
	repo := newFakeRepo(
		&model.Booking{ID: "4", Room: "Besar", Date: "2024-06-21", Hour: 8},
		&model.Booking{ID: "3", Room: "Kecil", Date: "2024-06-20", Hour: 9},
		&model.Booking{ID: "2", Room: "Besar", Date: "2024-06-20", Hour: 9},
		&model.Booking{ID: "1", Room: "Sedang", Date: "2024-06-20", Hour: 8},
	)
	svc, _ := newTestService(t, repo)

	list := svc.List(context.Background())
	var ids string
	for _, b := range list {
		ids += b.ID
	}
	if ids != "1234" {
		t.Errorf("List() order = %s, want 1234", ids)
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo(&model.Booking{ID: "1", Room: "Besar", Date: "2024-06-20", Hour: 9, BookedBy: "Alice"}))

	svc.List(context.Background())[0].BookedBy = "Mallory"
	got, err := svc.Get(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if got.BookedBy != "Alice" {
		t.Error("List() must not expose the snapshot")
	}
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo(&model.Booking{ID: "1", Room: "Besar", Date: "2024-06-20", Hour: 9}))

	if _, err := svc.Get(context.Background(), "1"); err != nil {
		t.Errorf("Get() error: %v", err)
	}
	_, err := svc.Get(context.Background(), "2")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUniqueness_RandomOperations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newFakeRepo())
	rng := rand.New(rand.NewSource(7))
	rooms := grid.DefaultRooms
	dates := []string{"2024-06-20", "2024-06-21"}

	for i := 0; i < 400; i++ {
		list := svc.List(ctx)
		if len(list) > 0 && rng.Intn(4) == 0 {
			victim := list[rng.Intn(len(list))]
			if err := svc.Remove(ctx, victim.ID); err != nil {
				t.Fatalf("Remove(%s) error: %v", victim.ID, err)
			}
			continue
		}

		req := request(rooms[rng.Intn(len(rooms))], dates[rng.Intn(len(dates))], 8+rng.Intn(4), "user")
		_, err := svc.Add(ctx, req)
		if err != nil && !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Fatalf("Add() unexpected error: %v", err)
		}
		assertUniqueSlots(t, svc.List(ctx))
	}
}

// ────────────────────────────────────────────────
// Week
// ────────────────────────────────────────────────

func TestWeek_LeapYear(t *testing.T) {
	repo := newFakeRepo(
		&model.Booking{ID: "leap", Room: "Sedang", Date: "2024-02-29", Hour: 10, BookedBy: "Leap"},
		&model.Booking{ID: "outside", Room: "Sedang", Date: "2024-03-04", Hour: 10, BookedBy: "Late"},
	)
	svc, _ := newTestService(t, repo)

	view, err := svc.Week(context.Background(), "2024-02-26")
	if err != nil {
		t.Fatalf("Week() error: %v", err)
	}

	want := []string{"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03"}
	if len(view.Dates) != len(want) {
		t.Fatalf("Dates = %v", view.Dates)
	}
	for i := range want {
		if view.Dates[i] != want[i] {
			t.Errorf("Dates[%d] = %s, want %s", i, view.Dates[i], want[i])
		}
	}
	if view.Previous != "2024-02-19" || view.Next != "2024-03-04" {
		t.Errorf("Previous/Next = %s/%s", view.Previous, view.Next)
	}
	if len(view.Bookings) != 1 || view.Bookings[0].ID != "leap" {
		t.Errorf("week bookings = %+v, want only the leap-day booking", view.Bookings)
	}

	if len(view.Rows) != 10 {
		t.Fatalf("rows = %d, want 10", len(view.Rows))
	}
	row := view.Rows[2] // 10:00
	if row.Hour != 10 || row.Label != "10:00 - 11:00" {
		t.Errorf("row = %d %q", row.Hour, row.Label)
	}
	cell := row.Days[3]
	if cell.Date != "2024-02-29" || len(cell.Slots) != 3 {
		t.Fatalf("cell = %+v", cell)
	}
	if cell.Slots[1].Room != "Sedang" || cell.Slots[1].Free() || cell.Slots[1].Booking.ID != "leap" {
		t.Errorf("Sedang slot = %+v, want booked by leap", cell.Slots[1])
	}
	if !cell.Slots[0].Free() || !cell.Slots[2].Free() {
		t.Error("other rooms should be free")
	}
}

func TestWeek_DefaultsToToday(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	view, err := svc.Week(context.Background(), "")
	if err != nil {
		t.Fatalf("Week() error: %v", err)
	}
	if view.Start != "2024-06-15" {
		t.Errorf("Start = %s, want today 2024-06-15", view.Start)
	}
}

func TestWeek_InvalidStart(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())
	_, err := svc.Week(context.Background(), "2023-02-29")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

// ────────────────────────────────────────────────
// Refresh, Start, Subscribe
// ────────────────────────────────────────────────

func TestRefresh_DuplicateSlotsKeepEarliest(t *testing.T) {
	early := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		&model.Booking{ID: "late", Room: "Besar", Date: "2024-06-20", Hour: 9, CreatedAt: early.Add(time.Minute)},
		&model.Booking{ID: "early", Room: "Besar", Date: "2024-06-20", Hour: 9, CreatedAt: early},
	)
	svc, _ := newTestService(t, repo)

	list := svc.List(context.Background())
	if len(list) != 1 || list[0].ID != "early" {
		t.Errorf("List() = %+v, want only the earliest booking", list)
	}
}

func TestRefresh_BackendError(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	repo.findAllFunc = func(context.Context) ([]*model.Booking, error) {
		return nil, bookingserrors.Unavailable("find bookings", errors.New("offline"))
	}
	assertCode(t, svc.Refresh(context.Background()), apperrors.CodeUnavailable)
}

func TestStart_FollowsWatcher(t *testing.T) {
	repo := &watchingRepo{fakeRepo: newFakeRepo()}
	svc, _ := newTestService(t, repo)

	if repo.onChange == nil {
		t.Fatal("Start() should subscribe to the backend")
	}

	var seen int
	svc.Subscribe(func(b []*model.Booking) { seen = len(b) })

	repo.onChange([]*model.Booking{
		{ID: "r1", Room: "Besar", Date: "2024-06-20", Hour: 9},
		{ID: "r2", Room: "Kecil", Date: "2024-06-20", Hour: 9},
	})

	if n := len(svc.List(context.Background())); n != 2 {
		t.Errorf("snapshot size after push = %d, want 2", n)
	}
	if seen != 2 {
		t.Errorf("observer saw %d bookings, want 2", seen)
	}

	svc.Stop()
	if !repo.stopped {
		t.Error("Stop() should end the backend watch")
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepo())

	calls := 0
	unsubscribe := svc.Subscribe(func([]*model.Booking) { calls++ })

	if _, err := svc.Add(context.Background(), request("Besar", "2024-06-20", 9, "Alice")); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	unsubscribe()
	if _, err := svc.Add(context.Background(), request("Besar", "2024-06-20", 10, "Alice")); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("observer calls = %d, want 1", calls)
	}
}
