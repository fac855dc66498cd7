package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/reservation"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/testutil"
)

type repoFixture struct {
	db      *gorm.DB
	repo    *ReservationGormRepository
	barber  *models.Barber
	service *models.Service
	alice   *models.Client
	bob     *models.Client
}

func newRepoFixture(t *testing.T) *repoFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	return &repoFixture{
		db:      db,
		repo:    NewReservationGormRepository(db),
		barber:  testutil.SeedBarber(t, db, "Xavier"),
		service: testutil.SeedService(t, db, "Corte", 30, 15),
		alice:   testutil.SeedClient(t, db, "Alice", "alice@example.com"),
		bob:     testutil.SeedClient(t, db, "Bob", "bob@example.com"),
	}
}

func (f *repoFixture) insert(t *testing.T, client *models.Client, at time.Time, status domain.Status) *models.Reservation {
	t.Helper()
	ap := &models.Reservation{
		ClientID:    client.ID,
		BarberID:    f.barber.ID,
		ServiceID:   f.service.ID,
		ScheduledAt: at,
		DurationMin: f.service.DurationMin,
		Status:      string(status),
	}
	if err := f.repo.CreateReservation(context.Background(), ap); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return ap
}

func TestCreateReservation_UniqueActiveSlot(t *testing.T) {
	f := newRepoFixture(t)
	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	first := f.insert(t, f.alice, at, domain.StatusConfirmed)

	dup := &models.Reservation{
		ClientID: f.bob.ID, BarberID: f.barber.ID, ServiceID: f.service.ID,
		ScheduledAt: at, DurationMin: 30, Status: string(domain.StatusConfirmed),
	}
	err := f.repo.CreateReservation(context.Background(), dup)
	if !httperr.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// a cancelled row frees the slot
	first.Status = string(domain.StatusCancelled)
	if err := f.repo.SaveReservation(context.Background(), first); err != nil {
		t.Fatal(err)
	}
	dup.ID = 0
	if err := f.repo.CreateReservation(context.Background(), dup); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
}

func TestFindActiveAtSlot_ExcludesSelfAndCancelled(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	ap := f.insert(t, f.alice, at, domain.StatusConfirmed)

	got, err := f.repo.FindActiveAtSlot(ctx, f.barber.ID, at, 0)
	if err != nil || got == nil || got.ID != ap.ID {
		t.Fatalf("find = %v, %v", got, err)
	}

	got, err = f.repo.FindActiveAtSlot(ctx, f.barber.ID, at, ap.ID)
	if err != nil || got != nil {
		t.Fatalf("exclude self = %v, %v", got, err)
	}

	held, err := f.repo.FindClientActiveAt(ctx, f.alice.ID, at, 0)
	if err != nil || held == nil || held.Barber.Name != "Xavier" {
		t.Fatalf("client slot = %+v, %v", held, err)
	}
}

func TestNextUpcomingAt(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f.insert(t, f.alice, now.Add(-time.Hour), domain.StatusConfirmed)
	f.insert(t, f.alice, now.Add(72*time.Hour), domain.StatusCancelled)
	want := f.insert(t, f.alice, now.Add(96*time.Hour), domain.StatusPending)

	next, err := f.repo.NextUpcomingAt(ctx, f.alice.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if next == nil || !next.Equal(want.ScheduledAt) {
		t.Fatalf("next = %v, want %v", next, want.ScheduledAt)
	}

	none, err := f.repo.NextUpcomingAt(ctx, f.bob.ID, now)
	if err != nil || none != nil {
		t.Fatalf("bob next = %v, %v", none, err)
	}
}

func TestCompletionCounters(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if err := f.repo.ApplyCompletion(ctx, f.alice.ID, at); err != nil {
		t.Fatal(err)
	}

	c := testutil.ReloadClient(t, f.db, f.alice.ID)
	if c.CompletedCount != 1 || c.LastAppointmentDate == nil || !c.LastAppointmentDate.Equal(at) {
		t.Fatalf("after apply: %+v", c)
	}

	// reverting twice never goes negative
	for i := 0; i < 2; i++ {
		if err := f.repo.RevertCompletion(ctx, f.alice.ID, at); err != nil {
			t.Fatal(err)
		}
	}

	c = testutil.ReloadClient(t, f.db, f.alice.ID)
	if c.CompletedCount != 0 || c.LastAppointmentDate != nil {
		t.Fatalf("after revert: %+v", c)
	}
}

func TestRevertCompletion_KeepsNewerLastDate(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	older := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_ = f.repo.ApplyCompletion(ctx, f.alice.ID, older)
	_ = f.repo.ApplyCompletion(ctx, f.alice.ID, newer)

	if err := f.repo.RevertCompletion(ctx, f.alice.ID, older); err != nil {
		t.Fatal(err)
	}

	c := testutil.ReloadClient(t, f.db, f.alice.ID)
	if c.CompletedCount != 1 || c.LastAppointmentDate == nil || !c.LastAppointmentDate.Equal(newer) {
		t.Fatalf("client = %+v", c)
	}
}

func TestListReservations_FiltersAndPages(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		f.insert(t, f.alice, base.Add(time.Duration(i)*time.Hour), domain.StatusConfirmed)
	}
	f.insert(t, f.bob, base.Add(24*time.Hour), domain.StatusPending)

	apps, total, err := f.repo.ListReservations(ctx, domain.ListFilter{
		ClientID: f.alice.ID,
		Limit:    2,
		Offset:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(apps) != 2 {
		t.Fatalf("total=%d len=%d", total, len(apps))
	}
	// newest first
	if !apps[0].ScheduledAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("page order: %v", apps[0].ScheduledAt)
	}
	if apps[0].Service.Name != "Corte" {
		t.Fatal("service not preloaded")
	}

	to := base.Add(48 * time.Hour)
	from := base.Add(12 * time.Hour)
	apps, total, err = f.repo.ListReservations(ctx, domain.ListFilter{
		Status: string(domain.StatusPending),
		From:   &from,
		To:     &to,
	})
	if err != nil || total != 1 || apps[0].ClientID != f.bob.ID {
		t.Fatalf("filtered = %v %d %v", apps, total, err)
	}
}

func TestListUnavailability_IncludesRecurring(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	dayStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	until := dayStart.AddDate(0, 0, -1)

	rows := []models.Unavailability{
		// almoço diário desde maio
		{BarberID: f.barber.ID, StartsAt: time.Date(2025, 5, 1, 13, 0, 0, 0, time.UTC), EndsAt: time.Date(2025, 5, 1, 14, 0, 0, 0, time.UTC), Kind: "lunch", Recurrence: "daily"},
		// recorrência já terminada
		{BarberID: f.barber.ID, StartsAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC), EndsAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), Kind: "other", Recurrence: "daily", RecurrenceUntil: &until},
		// no próprio dia
		{BarberID: f.barber.ID, StartsAt: dayStart.Add(16 * time.Hour), EndsAt: dayStart.Add(17 * time.Hour), Kind: "absence"},
		// outro dia
		{BarberID: f.barber.ID, StartsAt: dayStart.AddDate(0, 0, 2), EndsAt: dayStart.AddDate(0, 0, 3), Kind: "day_off"},
	}
	if err := f.db.Create(&rows).Error; err != nil {
		t.Fatal(err)
	}

	out, err := f.repo.ListUnavailability(ctx, f.barber.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}

	kinds := map[string]bool{}
	for _, u := range out {
		kinds[u.Kind] = true
	}
	if len(out) != 2 || !kinds["lunch"] || !kinds["absence"] {
		t.Fatalf("got %+v", out)
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.repo.WithTx(ctx, func(tx domain.Repository) error {
		ap := &models.Reservation{
			ClientID: f.alice.ID, BarberID: f.barber.ID, ServiceID: f.service.ID,
			ScheduledAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), DurationMin: 30,
			Status: string(domain.StatusConfirmed),
		}
		if err := tx.CreateReservation(ctx, ap); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	var n int64
	f.db.Model(&models.Reservation{}).Count(&n)
	if n != 0 {
		t.Fatalf("rows after rollback = %d", n)
	}
}
