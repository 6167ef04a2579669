package store_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"leadcaller/internal/models"
	"leadcaller/internal/store"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type storeFactory func(t *testing.T) store.Store

func memoryStore(t *testing.T) store.Store {
	return store.NewMemory()
}

// postgresStore runs each test inside a transaction that is rolled back on
// cleanup, so runs never see each other's rows.
func postgresStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tx := db.Begin()
	t.Cleanup(func() {
		tx.Rollback()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGorm(tx)
}

func forEachStore(t *testing.T, fn func(t *testing.T, st store.Store)) {
	for name, factory := range map[string]storeFactory{
		"memory":   memoryStore,
		"postgres": postgresStore,
	} {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestMeetingLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		date := "2099-01-01"

		m := &models.Meeting{Name: "Bob", Phone: "+61400000000", Date: date, Time: "10:30", Task: "t", FirstSentence: "f"}
		if err := st.CreateMeeting(ctx, m); err != nil {
			t.Fatalf("CreateMeeting: %v", err)
		}
		if m.ID == 0 || m.CreatedAt.IsZero() {
			t.Fatalf("expected id and timestamps, got %+v", m)
		}

		other := &models.Meeting{Name: "Ana", Phone: "+61400000001", Date: date, Time: "10:31"}
		if err := st.CreateMeeting(ctx, other); err != nil {
			t.Fatalf("CreateMeeting: %v", err)
		}

		due, err := st.DueMeetings(ctx, date, "10:30")
		if err != nil {
			t.Fatalf("DueMeetings: %v", err)
		}
		if len(due) != 1 || due[0].ID != m.ID {
			t.Fatalf("expected only the 10:30 meeting due, got %+v", due)
		}

		if err := st.SetMeetingCallID(ctx, m.ID, "call-1"); err != nil {
			t.Fatalf("SetMeetingCallID: %v", err)
		}
		got, err := st.GetMeeting(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetMeeting: %v", err)
		}
		if got.CallID == nil || *got.CallID != "call-1" {
			t.Fatalf("expected call id stored, got %v", got.CallID)
		}
		if due, _ := st.DueMeetings(ctx, date, "10:30"); len(due) != 0 {
			t.Fatalf("dispatched meeting must not be due again, got %+v", due)
		}

		m.Time = "10:45"
		m.Issue = "new issue"
		if err := st.UpdateMeeting(ctx, m); err != nil {
			t.Fatalf("UpdateMeeting: %v", err)
		}
		got, _ = st.GetMeeting(ctx, m.ID)
		if got.Time != "10:45" || got.Issue != "new issue" || got.Dispatched() {
			t.Fatalf("unexpected meeting after update %+v", got)
		}
		if due, _ := st.DueMeetings(ctx, date, "10:45"); len(due) != 1 {
			t.Fatalf("expected rescheduled meeting due, got %+v", due)
		}

		list, err := st.ListMeetings(ctx)
		if err != nil {
			t.Fatalf("ListMeetings: %v", err)
		}
		if len(list) < 2 {
			t.Fatalf("expected at least 2 meetings, got %d", len(list))
		}
	})
}

func TestMeetingNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		missing := uint(1 << 30)
		if _, err := st.GetMeeting(ctx, missing); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("GetMeeting: expected ErrNotFound, got %v", err)
		}
		if err := st.UpdateMeeting(ctx, &models.Meeting{ID: missing, Name: "x"}); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("UpdateMeeting: expected ErrNotFound, got %v", err)
		}
		if err := st.SetMeetingCallID(ctx, missing, "c"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("SetMeetingCallID: expected ErrNotFound, got %v", err)
		}
	})
}

func TestProgressLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		callID := uuid.NewString()

		if _, err := st.GetProgress(ctx, callID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		p := &models.UserProgress{
			CallID:      callID,
			CurrentStep: "greeting",
			Context:     models.Context{"variables": models.Object(map[string]models.Value{"a": models.Int(1)})},
		}
		if err := st.CreateProgress(ctx, p); err != nil {
			t.Fatalf("CreateProgress: %v", err)
		}
		if err := st.CreateProgress(ctx, &models.UserProgress{CallID: callID}); !errors.Is(err, store.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		got, err := st.GetProgress(ctx, callID)
		if err != nil {
			t.Fatalf("GetProgress: %v", err)
		}
		a, _ := got.Context["variables"].Get("a")
		if n, ok := a.Number(); !ok || n.String() != "1" {
			t.Fatalf("context not stored, got %#v", got.Context)
		}

		got.CurrentStep = "qualify"
		got.Name = "Bob"
		got.Context["mood"] = models.String("ok")
		if err := st.SaveProgress(ctx, got); err != nil {
			t.Fatalf("SaveProgress: %v", err)
		}
		if err := st.UpdateCallIDVoice(ctx, callID, "voice-1"); err != nil {
			t.Fatalf("UpdateCallIDVoice: %v", err)
		}

		got, _ = st.GetProgress(ctx, callID)
		if got.CurrentStep != "qualify" || got.Name != "Bob" || got.CallIDVoice != "voice-1" {
			t.Fatalf("unexpected progress %+v", got)
		}
		if mood, _ := got.Context["mood"].Str(); mood != "ok" {
			t.Fatalf("expected context saved, got %#v", got.Context)
		}

		if err := st.UpdateCallIDVoice(ctx, uuid.NewString(), "v"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCallAttempts(t *testing.T) {
	forEachStore(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		m := &models.Meeting{Name: "Bob", Phone: "+61400000000", Date: "2099-01-02", Time: "09:00"}
		if err := st.CreateMeeting(ctx, m); err != nil {
			t.Fatalf("CreateMeeting: %v", err)
		}

		for _, ok := range []bool{false, true} {
			attempt := &models.CallAttempt{
				MeetingID: &m.ID,
				Kind:      models.CallKindScripted,
				Origin:    models.OriginTrigger,
				Phone:     m.Phone,
				Payload:   []byte(`{"phone":"+61400000000"}`),
				Success:   ok,
			}
			if err := st.RecordCallAttempt(ctx, attempt); err != nil {
				t.Fatalf("RecordCallAttempt: %v", err)
			}
			if attempt.ID == 0 {
				t.Fatal("expected attempt id")
			}
		}
		if err := st.RecordCallAttempt(ctx, &models.CallAttempt{Kind: models.CallKindHandoff, Phone: "x", Payload: []byte(`{}`)}); err != nil {
			t.Fatalf("RecordCallAttempt without meeting: %v", err)
		}

		attempts, err := st.ListCallAttempts(ctx, m.ID)
		if err != nil {
			t.Fatalf("ListCallAttempts: %v", err)
		}
		if len(attempts) != 2 || attempts[0].Success || !attempts[1].Success {
			t.Fatalf("unexpected attempts %+v", attempts)
		}
	})
}
