package services

import (
	"context"
	"fmt"
	"time"

	"leadcaller/internal/models"
	"leadcaller/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// EveryMinute is the trigger's cron schedule
const EveryMinute = "* * * * *"

// TickReport summarises one trigger run
type TickReport struct {
	Date       string
	Time       string
	Due        int
	Dispatched int
	Failed     int
}

// CallTrigger calls every meeting that falls due, once a minute
type CallTrigger struct {
	meetings   store.MeetingStore
	dispatcher CallDispatcher
	recorder   attemptRecorder
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger

	cron *cron.Cron
}

// NewCallTrigger builds a trigger that reads meeting slots in loc
func NewCallTrigger(st store.Store, dispatcher CallDispatcher, loc *time.Location, log zerolog.Logger) *CallTrigger {
	log = log.With().Str("component", "call_trigger").Logger()
	return &CallTrigger{
		meetings:   st,
		dispatcher: dispatcher,
		recorder:   attemptRecorder{attempts: st, log: log},
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// Start registers the per-minute job and starts the scheduler. ctx is handed
// to every dispatch the trigger makes.
func (w *CallTrigger) Start(ctx context.Context) error {
	cl := cronLogger{log: w.log}
	c := cron.New(
		cron.WithLocation(w.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	if _, err := c.AddFunc(EveryMinute, func() { w.RunOnce(ctx, w.now()) }); err != nil {
		return fmt.Errorf("failed to schedule call trigger: %w", err)
	}
	w.cron = c
	c.Start()
	w.log.Info().Str("tz", w.loc.String()).Str("schedule", EveryMinute).Msg("call trigger started")
	return nil
}

// Stop halts the scheduler. The returned context is done once a tick that is
// already running has finished.
func (w *CallTrigger) Stop() context.Context {
	if w.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return w.cron.Stop()
}

// FindDueMeetings returns the meetings stored for the minute containing now
func FindDueMeetings(ctx context.Context, meetings store.MeetingStore, now time.Time, loc *time.Location) ([]models.Meeting, string, string, error) {
	date, clock := DueSlot(now, loc)
	due, err := meetings.DueMeetings(ctx, date, clock)
	return due, date, clock, err
}

// RunOnce calls every meeting due at now. A failed call is logged and the
// remaining meetings are still attempted. A meeting whose call succeeds gets
// the call id stored, which keeps it out of later due queries.
func (w *CallTrigger) RunOnce(ctx context.Context, now time.Time) TickReport {
	due, date, clock, err := FindDueMeetings(ctx, w.meetings, now, w.loc)
	report := TickReport{Date: date, Time: clock, Due: len(due)}
	if err != nil {
		w.log.Error().Err(err).Str("date", date).Str("time", clock).Msg("failed to query due meetings")
		return report
	}

	for i := range due {
		meeting := &due[i]

		callID, err := dispatchMeeting(ctx, w.dispatcher, w.recorder, meeting, models.OriginTrigger)
		if err != nil {
			report.Failed++
			w.log.Error().Err(err).
				Uint("meeting_id", meeting.ID).
				Str("phone", meeting.Phone).
				Msg("automatic call failed")
			continue
		}

		if err := w.meetings.SetMeetingCallID(ctx, meeting.ID, callID); err != nil {
			w.log.Error().Err(err).
				Uint("meeting_id", meeting.ID).
				Str("call_id", callID).
				Msg("call placed but call id not saved")
		}
		report.Dispatched++
		w.log.Info().
			Uint("meeting_id", meeting.ID).
			Str("phone", meeting.Phone).
			Str("call_id", callID).
			Str("slot", date+" "+clock).
			Msg("automatic call sent")
	}
	return report
}

// cronLogger routes robfig/cron's logging through zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
