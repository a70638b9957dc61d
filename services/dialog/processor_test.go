package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"medivoice/models"
	"medivoice/services/nlp"
)

type stubCalendar struct {
	result models.CalendarResult
	events []models.BookingEvent
}

func (s *stubCalendar) CreateEvent(ctx context.Context, event models.BookingEvent) models.CalendarResult {
	s.events = append(s.events, event)
	return s.result
}

type stubExtractor struct {
	fields nlp.Fields
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, utterance string, captured models.CapturedFields, today string) (nlp.Fields, error) {
	s.calls++
	return s.fields, s.err
}

type stubRecorder struct {
	records []models.AppointmentRecord
}

func (s *stubRecorder) Create(ctx context.Context, record models.AppointmentRecord) (string, error) {
	s.records = append(s.records, record)
	return "record-1", nil
}

type stubScheduler struct {
	payloads []models.ReminderPayload
	fireAts  []time.Time
}

func (s *stubScheduler) Schedule(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	s.payloads = append(s.payloads, payload)
	s.fireAts = append(s.fireAts, fireAt)
	return nil
}

func newTestProcessor(t *testing.T) (*DefaultTurnProcessor, *MemorySessionStore, *stubCalendar) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	store := NewMemorySessionStore(time.Minute)
	cal := &stubCalendar{result: models.CalendarResult{Status: "success", Message: "Event created: link"}}
	p := &DefaultTurnProcessor{
		Store:    store,
		Calendar: cal,
		Loc:      loc,
		Now:      func() time.Time { return time.Date(2025, 9, 10, 10, 0, 0, 0, loc) },
	}
	return p, store, cal
}

func mustSave(t *testing.T, store SessionStore, id string, sess *models.Session) {
	t.Helper()
	if err := store.Save(context.Background(), id, sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func confirmReadySession() *models.Session {
	return &models.Session{
		Step: models.StepConfirm,
		Captured: models.CapturedFields{
			PatientName:     "John Smith",
			PatientEmail:    "john@gmail.com",
			AppointmentDate: "2025-09-15",
			AppointmentTime: "14:30",
			Reason:          "a routine checkup",
		},
		EmailConfirmed:    true,
		DatetimeConfirmed: true,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		step       models.Step
		text       string
		initTurn   bool
		newSession bool
		want       TurnKind
	}{
		{"explicit init flag", models.StepAskDate, "friday", true, false, TurnInit},
		{"empty utterance", models.StepAskDate, "", false, false, TurnInit},
		{"unknown session", models.StepAskName, "hello", false, true, TurnInit},
		{"greeting step", models.StepGreeting, "hello", false, false, TurnInit},
		{"filler at value step", models.StepAskEmail, "ok", false, false, TurnFiller},
		{"filler word as name is a value", models.StepAskName, "ok", false, false, TurnValue},
		{"yes at email confirmation", models.StepConfirmEmail, "yes that's right", false, false, TurnConfirmYes},
		{"no at datetime confirmation", models.StepConfirmDatetime, "no that's wrong", false, false, TurnConfirmNo},
		{"yes and no together", models.StepConfirmEmail, "yes no wait", false, false, TurnAmbiguous},
		{"neither keyword set", models.StepConfirmDatetime, "hmm maybe", false, false, TurnAmbiguous},
		{"value at ask date", models.StepAskDate, "next monday", false, false, TurnValue},
		{"final confirmation is a value turn", models.StepConfirm, "yes please", false, false, TurnValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.step, tt.text, tt.initTurn, tt.newSession)
			if got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.step, tt.text, got, tt.want)
			}
		})
	}
}

func TestProcessTurnInitCreatesSession(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	res, err := p.ProcessTurn(ctx, "s1", "", true)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepAskName {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskName)
	}
	if !strings.Contains(res.BotText, "book an appointment") {
		t.Errorf("greeting missing from %q", res.BotText)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess == nil || sess.Step != models.StepAskName {
		t.Errorf("session not persisted: %+v", sess)
	}
}

func TestProcessTurnCapturesSlots(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.ProcessTurn(ctx, "s1", "", true); err != nil {
		t.Fatalf("init: %v", err)
	}

	res, err := p.ProcessTurn(ctx, "s1", "my name is John Smith", false)
	if err != nil {
		t.Fatalf("name turn: %v", err)
	}
	if res.Step != models.StepAskEmail {
		t.Errorf("step after name = %q", res.Step)
	}

	res, err = p.ProcessTurn(ctx, "s1", "it's john at gmail dot com", false)
	if err != nil {
		t.Fatalf("email turn: %v", err)
	}
	if res.Step != models.StepConfirmEmail {
		t.Errorf("step after email = %q", res.Step)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "john@gmail.com" {
		t.Errorf("email = %q", sess.Captured.PatientEmail)
	}
	if sess.EmailConfirmed {
		t.Error("email confirmed before the user confirmed it")
	}

	res, err = p.ProcessTurn(ctx, "s1", "yes", false)
	if err != nil {
		t.Fatalf("confirm email turn: %v", err)
	}
	if res.Step != models.StepAskDate {
		t.Errorf("step after email confirmation = %q", res.Step)
	}

	res, err = p.ProcessTurn(ctx, "s1", "friday", false)
	if err != nil {
		t.Fatalf("date turn: %v", err)
	}
	if res.Step != models.StepAskTime {
		t.Errorf("step after date = %q", res.Step)
	}
	sess, _ = store.Get(ctx, "s1")
	if sess.Captured.AppointmentDate != "2025-09-12" {
		t.Errorf("date = %q", sess.Captured.AppointmentDate)
	}

	res, err = p.ProcessTurn(ctx, "s1", "2:30 pm", false)
	if err != nil {
		t.Fatalf("time turn: %v", err)
	}
	if res.Step != models.StepConfirmDatetime {
		t.Errorf("step after time = %q", res.Step)
	}
	if !strings.Contains(res.BotText, "Friday 12 September at 2:30 pm") {
		t.Errorf("datetime confirmation prompt = %q", res.BotText)
	}
}

// A time-only answer to the date question keeps the time, re-asks for the
// date, and never reaches the datetime confirmation with a missing date.
func TestProcessTurnTimeOnlyAtAskDate(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepAskDate,
		Captured: models.CapturedFields{
			PatientName:  "John Smith",
			PatientEmail: "john@gmail.com",
		},
		EmailConfirmed: true,
	})

	res, err := p.ProcessTurn(ctx, "s1", "2pm", false)
	if err != nil {
		t.Fatalf("time turn: %v", err)
	}
	if res.Step != models.StepAskDate {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskDate)
	}
	if !strings.Contains(res.BotText, "What date would you like") {
		t.Errorf("date not re-asked: %q", res.BotText)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.AppointmentTime != "14:00" {
		t.Errorf("time = %q", sess.Captured.AppointmentTime)
	}
	if sess.Captured.AppointmentDate != "" {
		t.Errorf("date = %q", sess.Captured.AppointmentDate)
	}
	if sess.DatetimeConfirmed {
		t.Error("DatetimeConfirmed set without a date")
	}

	// An affirmative here is a value turn with nothing to extract, so the
	// date question is simply repeated and the flag stays down.
	res, err = p.ProcessTurn(ctx, "s1", "yes", false)
	if err != nil {
		t.Fatalf("follow-up turn: %v", err)
	}
	if res.Step != models.StepAskDate {
		t.Errorf("step after yes = %q, want %q", res.Step, models.StepAskDate)
	}
	sess, _ = store.Get(ctx, "s1")
	if sess.DatetimeConfirmed {
		t.Error("DatetimeConfirmed set while the date is still missing")
	}

	// Once the date arrives, both slots are present and confirmation runs
	// with a complete rendering.
	res, err = p.ProcessTurn(ctx, "s1", "friday", false)
	if err != nil {
		t.Fatalf("date turn: %v", err)
	}
	if res.Step != models.StepConfirmDatetime {
		t.Errorf("step after date = %q, want %q", res.Step, models.StepConfirmDatetime)
	}
	if !strings.Contains(res.BotText, "Friday 12 September at 2 pm") {
		t.Errorf("confirmation prompt = %q", res.BotText)
	}
}

func TestProcessTurnEmailRejectionClearsSlot(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepConfirmEmail,
		Captured: models.CapturedFields{
			PatientName:  "John Smith",
			PatientEmail: "wrong@gmail.com",
		},
	})

	res, err := p.ProcessTurn(ctx, "s1", "no that's wrong", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepAskEmail {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskEmail)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "" {
		t.Errorf("rejected email kept: %q", sess.Captured.PatientEmail)
	}
	if sess.EmailConfirmed {
		t.Error("EmailConfirmed still set after rejection")
	}
}

func TestProcessTurnDatetimeRejectionClearsBothSlots(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepConfirmDatetime,
		Captured: models.CapturedFields{
			PatientName:     "John Smith",
			PatientEmail:    "john@gmail.com",
			AppointmentDate: "2025-09-12",
			AppointmentTime: "14:30",
		},
		EmailConfirmed: true,
	})

	res, err := p.ProcessTurn(ctx, "s1", "no", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepAskDate {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskDate)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.AppointmentDate != "" || sess.Captured.AppointmentTime != "" {
		t.Errorf("rejected datetime kept: %q %q",
			sess.Captured.AppointmentDate, sess.Captured.AppointmentTime)
	}
}

func TestProcessTurnFillerLeavesStateUntouched(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	seed := &models.Session{
		Step:           models.StepAskDate,
		Captured:       models.CapturedFields{PatientName: "John Smith", PatientEmail: "john@gmail.com"},
		EmailConfirmed: true,
	}
	mustSave(t, store, "s1", seed)

	res, err := p.ProcessTurn(ctx, "s1", "okay thanks", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepAskDate {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskDate)
	}
	if !strings.Contains(res.BotText, "What date would you like") {
		t.Errorf("date prompt not re-issued: %q", res.BotText)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured != seed.Captured {
		t.Errorf("filler turn mutated captured slots: %+v", sess.Captured)
	}
}

func TestProcessTurnAmbiguousConfirmationReprompts(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepConfirmEmail,
		Captured: models.CapturedFields{
			PatientName:  "John Smith",
			PatientEmail: "john@gmail.com",
		},
	})

	res, err := p.ProcessTurn(ctx, "s1", "yes no wait", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepConfirmEmail {
		t.Errorf("step = %q, want %q", res.Step, models.StepConfirmEmail)
	}
	if !strings.Contains(res.BotText, "Is that correct?") {
		t.Errorf("confirmation not re-issued: %q", res.BotText)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "john@gmail.com" || sess.EmailConfirmed {
		t.Errorf("ambiguous turn mutated state: %+v", sess)
	}
}

func TestProcessTurnNewEmailResetsConfirmation(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepAskReason,
		Captured: models.CapturedFields{
			PatientName:     "John Smith",
			PatientEmail:    "old@gmail.com",
			AppointmentDate: "2025-09-12",
			AppointmentTime: "14:30",
		},
		EmailConfirmed:    true,
		DatetimeConfirmed: true,
	})

	res, err := p.ProcessTurn(ctx, "s1", "my email is new at yahoo dot com", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "new@yahoo.com" {
		t.Errorf("email = %q", sess.Captured.PatientEmail)
	}
	if sess.EmailConfirmed {
		t.Error("EmailConfirmed survived an email overwrite")
	}
	// The reroute to confirm_email only happens while asking for the email;
	// a mid-flow overwrite stays on the current step.
	if res.Step != models.StepAskReason {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskReason)
	}
}

func TestProcessTurnChangedDateForcesReconfirmation(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step: models.StepAskReason,
		Captured: models.CapturedFields{
			PatientName:     "John Smith",
			PatientEmail:    "john@gmail.com",
			AppointmentDate: "2025-09-12",
			AppointmentTime: "14:30",
		},
		EmailConfirmed:    true,
		DatetimeConfirmed: true,
	})

	res, err := p.ProcessTurn(ctx, "s1", "15 september", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepConfirmDatetime {
		t.Errorf("step = %q, want %q", res.Step, models.StepConfirmDatetime)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.AppointmentDate != "2025-09-15" {
		t.Errorf("date = %q", sess.Captured.AppointmentDate)
	}
	if sess.DatetimeConfirmed {
		t.Error("DatetimeConfirmed survived a date change")
	}
}

func TestProcessTurnBooksOnFinalConfirmation(t *testing.T) {
	p, store, cal := newTestProcessor(t)
	rec := &stubRecorder{}
	sched := &stubScheduler{}
	p.Records = rec
	p.Reminders = sched
	ctx := context.Background()

	mustSave(t, store, "s1", confirmReadySession())

	res, err := p.ProcessTurn(ctx, "s1", "yes please book it", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !res.SessionEnded {
		t.Error("SessionEnded not set after a successful booking")
	}
	if res.CalendarError != "" {
		t.Errorf("CalendarError = %q", res.CalendarError)
	}
	if !strings.Contains(res.BotText, "Your appointment is booked") {
		t.Errorf("booking confirmation missing from %q", res.BotText)
	}

	if len(cal.events) != 1 {
		t.Fatalf("calendar called %d times", len(cal.events))
	}
	ev := cal.events[0]
	loc, _ := time.LoadLocation("Europe/London")
	wantStart := time.Date(2025, 9, 15, 14, 30, 0, 0, loc)
	if !ev.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", ev.Start, wantStart)
	}
	if !ev.End.Equal(wantStart.Add(30 * time.Minute)) {
		t.Errorf("end = %v", ev.End)
	}

	if len(rec.records) != 1 || rec.records[0].Status != "success" {
		t.Errorf("appointment record not persisted: %+v", rec.records)
	}
	if len(sched.fireAts) != 1 || !sched.fireAts[0].Equal(wantStart.Add(-30*time.Minute)) {
		t.Errorf("reminder schedule = %+v", sched.fireAts)
	}

	sess, _ := store.Get(ctx, "s1")
	if sess != nil {
		t.Errorf("session survived the booking: %+v", sess)
	}
}

func TestProcessTurnBookingDefaultsTime(t *testing.T) {
	p, store, cal := newTestProcessor(t)
	ctx := context.Background()

	sess := confirmReadySession()
	sess.Captured.AppointmentTime = ""
	mustSave(t, store, "s1", sess)

	if _, err := p.ProcessTurn(ctx, "s1", "yes", false); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if len(cal.events) != 1 {
		t.Fatalf("calendar called %d times", len(cal.events))
	}
	if got := cal.events[0].Start.Format("15:04"); got != "09:00" {
		t.Errorf("default start time = %q", got)
	}
}

func TestProcessTurnBookingFailureIsTerminal(t *testing.T) {
	p, store, cal := newTestProcessor(t)
	cal.result = models.CalendarResult{Status: "error", Message: "calendar unreachable"}
	ctx := context.Background()

	mustSave(t, store, "s1", confirmReadySession())

	res, err := p.ProcessTurn(ctx, "s1", "yes", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.SessionEnded {
		t.Error("SessionEnded set on a failed booking")
	}
	if res.CalendarError != "calendar unreachable" {
		t.Errorf("CalendarError = %q", res.CalendarError)
	}
	if !strings.Contains(res.BotText, "couldn't complete the booking") {
		t.Errorf("apology missing from %q", res.BotText)
	}

	// The session is terminal after any booking attempt, failed included.
	sess, _ := store.Get(ctx, "s1")
	if sess != nil {
		t.Errorf("session survived a failed booking: %+v", sess)
	}
}

func TestProcessTurnBookingWithoutDateFails(t *testing.T) {
	p, store, cal := newTestProcessor(t)
	ctx := context.Background()

	sess := confirmReadySession()
	sess.Captured.AppointmentDate = ""
	mustSave(t, store, "s1", sess)

	res, err := p.ProcessTurn(ctx, "s1", "yes", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.CalendarError != "Missing appointment date." {
		t.Errorf("CalendarError = %q", res.CalendarError)
	}
	if len(cal.events) != 0 {
		t.Errorf("calendar invoked without a date: %+v", cal.events)
	}
}

func TestProcessTurnFallbackFillsGaps(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ext := &stubExtractor{fields: nlp.Fields{PatientEmail: "jane@yahoo.com"}}
	p.Fallback = ext
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step:     models.StepAskEmail,
		Captured: models.CapturedFields{PatientName: "Jane O'brien"},
	})

	res, err := p.ProcessTurn(ctx, "s1", "you can reach me the usual way, jane from yahoo", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ext.calls != 1 {
		t.Errorf("fallback called %d times", ext.calls)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "jane@yahoo.com" {
		t.Errorf("email = %q", sess.Captured.PatientEmail)
	}
	if res.Step != models.StepConfirmEmail {
		t.Errorf("step = %q, want %q", res.Step, models.StepConfirmEmail)
	}
}

func TestProcessTurnFallbackErrorDegrades(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ext := &stubExtractor{err: errors.New("model unavailable")}
	p.Fallback = ext
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step:     models.StepAskEmail,
		Captured: models.CapturedFields{PatientName: "Jane O'brien"},
	})

	res, err := p.ProcessTurn(ctx, "s1", "the usual address", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.Step != models.StepAskEmail {
		t.Errorf("step = %q, want %q", res.Step, models.StepAskEmail)
	}
	sess, _ := store.Get(ctx, "s1")
	if sess.Captured.PatientEmail != "" {
		t.Errorf("email = %q", sess.Captured.PatientEmail)
	}
}

func TestProcessTurnFallbackSkippedWhenRulesComplete(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ext := &stubExtractor{}
	p.Fallback = ext
	ctx := context.Background()

	mustSave(t, store, "s1", &models.Session{
		Step:     models.StepAskEmail,
		Captured: models.CapturedFields{PatientName: "John Smith"},
	})

	_, err := p.ProcessTurn(ctx, "s1", "john@gmail.com on friday at 2pm", false)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if ext.calls != 0 {
		t.Errorf("fallback called %d times with nothing left to fill", ext.calls)
	}
}

// Every turn leaves the session on a step the prompt cascade knows about.
func TestProcessTurnStepsStayInEnum(t *testing.T) {
	known := map[models.Step]struct{}{
		models.StepGreeting: {}, models.StepAskName: {}, models.StepAskEmail: {},
		models.StepConfirmEmail: {}, models.StepAskDate: {}, models.StepAskTime: {},
		models.StepConfirmDatetime: {}, models.StepAskReason: {}, models.StepConfirm: {},
	}
	p, _, _ := newTestProcessor(t)
	ctx := context.Background()

	utterances := []string{"", "hello", "my name is John Smith", "ok", "john at gmail dot com", "yes", "friday", "2 pm", "yes", "a checkup"}
	for i, u := range utterances {
		res, err := p.ProcessTurn(ctx, "s1", u, i == 0)
		if err != nil {
			t.Fatalf("turn %d (%q): %v", i, u, err)
		}
		if _, ok := known[res.Step]; !ok {
			t.Errorf("turn %d (%q) left unknown step %q", i, u, res.Step)
		}
	}
}

func TestSessionLocksBounded(t *testing.T) {
	var locks sessionLocks

	if locks.get("abc") != locks.get("abc") {
		t.Error("same key must map to the same lock")
	}

	distinct := make(map[*sync.Mutex]struct{})
	for i := 0; i < 10000; i++ {
		distinct[locks.get(fmt.Sprintf("session-%d", i))] = struct{}{}
	}
	if len(distinct) > sessionLockStripes {
		t.Errorf("lock set grew to %d entries, cap is %d", len(distinct), sessionLockStripes)
	}
}

func TestProcessTurnSerializesSameSession(t *testing.T) {
	p, store, _ := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.ProcessTurn(ctx, "s1", "", true); err != nil {
		t.Fatalf("init: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.ProcessTurn(ctx, "s1", "hmm", false)
		}()
	}
	wg.Wait()

	sess, _ := store.Get(ctx, "s1")
	if sess == nil || sess.Step != models.StepAskName {
		t.Errorf("session after concurrent fillers: %+v", sess)
	}
}
