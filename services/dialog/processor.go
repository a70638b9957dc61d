// File: services/dialog/processor.go
package dialog

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"medivoice/models"
	"medivoice/services/nlp"

	"go.uber.org/zap"
)

// TurnKind classifies one utterance against the session's current step.
type TurnKind string

const (
	TurnInit       TurnKind = "init"
	TurnFiller     TurnKind = "filler"
	TurnConfirmYes TurnKind = "confirmation_yes"
	TurnConfirmNo  TurnKind = "confirmation_no"
	TurnAmbiguous  TurnKind = "ambiguous_confirmation"
	TurnValue      TurnKind = "value"
)

// TurnResult is the out-of-band outcome of one processed turn.
type TurnResult struct {
	BotText       string
	Step          models.Step
	CalendarError string
	SessionEnded  bool
}

// CalendarInviter creates the appointment event with the external calendar.
type CalendarInviter interface {
	CreateEvent(ctx context.Context, event models.BookingEvent) models.CalendarResult
}

// AppointmentRecorder persists the trace of a booking attempt.
type AppointmentRecorder interface {
	Create(ctx context.Context, record models.AppointmentRecord) (string, error)
}

// ReminderScheduler queues an appointment reminder for later delivery.
type ReminderScheduler interface {
	Schedule(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// TurnProcessor drives one request/response cycle against a session.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID, utterance string, initTurn bool) (TurnResult, error)
}

// Steps at which a bare acknowledgement is treated as filler rather than
// as a value to extract.
var valueSteps = map[models.Step]struct{}{
	models.StepAskEmail:        {},
	models.StepConfirmEmail:    {},
	models.StepAskDate:         {},
	models.StepAskTime:         {},
	models.StepConfirmDatetime: {},
	models.StepAskReason:       {},
}

// Classify buckets one utterance. Confirmation steps resolve to yes, no or
// ambiguous using independent keyword sets; everything else that is not
// filler carries a value.
func Classify(step models.Step, text string, initTurn, newSession bool) TurnKind {
	if initTurn || text == "" || newSession || step == models.StepGreeting {
		return TurnInit
	}
	if _, expectsValue := valueSteps[step]; expectsValue && nlp.IsFiller(text) {
		return TurnFiller
	}
	if step == models.StepConfirmEmail || step == models.StepConfirmDatetime {
		aff, neg := nlp.IsAffirmative(text), nlp.IsNegative(text)
		switch {
		case aff && !neg:
			return TurnConfirmYes
		case neg && !aff:
			return TurnConfirmNo
		default:
			return TurnAmbiguous
		}
	}
	return TurnValue
}

// sessionLocks serializes concurrent turns against the same session key.
// A fixed stripe set keeps memory constant no matter how many session keys
// pass through; distinct keys sharing a stripe only cost contention.
type sessionLocks struct {
	stripes [sessionLockStripes]sync.Mutex
}

const sessionLockStripes = 64

func (s *sessionLocks) get(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.stripes[h.Sum32()%sessionLockStripes]
}

// DefaultTurnProcessor implements the intake state machine over a session
// store and the external collaborators. Records and Reminders are optional;
// a missing Fallback simply disables LLM gap filling.
type DefaultTurnProcessor struct {
	Store     SessionStore
	Fallback  nlp.FieldExtractor
	Calendar  CalendarInviter
	Records   AppointmentRecorder
	Reminders ReminderScheduler

	Loc             *time.Location
	Now             func() time.Time
	LLMTimeout      time.Duration
	CalendarTimeout time.Duration
	Logger          *zap.Logger

	locks sessionLocks
}

func (p *DefaultTurnProcessor) now() time.Time {
	var t time.Time
	if p.Now != nil {
		t = p.Now()
	} else {
		t = time.Now()
	}
	if p.Loc != nil {
		t = t.In(p.Loc)
	}
	return t
}

func (p *DefaultTurnProcessor) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}

// ProcessTurn runs one turn: classify, extract, update confirmations,
// compute the next prompt and, at the final confirmation, attempt the
// booking. Turns for the same session key are serialized.
func (p *DefaultTurnProcessor) ProcessTurn(ctx context.Context, sessionID, utterance string, initTurn bool) (TurnResult, error) {
	lock := p.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	now := p.now()
	text := strings.Join(strings.Fields(utterance), " ")

	sess, err := p.Store.Get(ctx, sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load session %q: %w", sessionID, err)
	}
	newSession := sess == nil
	if newSession {
		sess = models.NewSession()
	}

	kind := Classify(sess.Step, text, initTurn, newSession)

	switch kind {
	case TurnInit, TurnFiller, TurnAmbiguous:
		// State untouched; the pending prompt is (re)issued below.
	case TurnConfirmYes:
		if sess.Step == models.StepConfirmEmail {
			sess.EmailConfirmed = true
		} else {
			sess.DatetimeConfirmed = true
		}
	case TurnConfirmNo:
		if sess.Step == models.StepConfirmEmail {
			sess.EmailConfirmed = false
			sess.Captured.PatientEmail = ""
			sess.Step = models.StepAskEmail
		} else {
			sess.DatetimeConfirmed = false
			sess.Captured.AppointmentDate = ""
			sess.Captured.AppointmentTime = ""
			sess.Step = models.StepAskDate
		}
	case TurnValue:
		p.applyExtraction(ctx, sess, text, now)
	}

	result := TurnResult{BotText: NextPrompt(sess, now)}

	affirmed := kind == TurnConfirmYes || (kind == TurnValue && nlp.IsAffirmative(text))
	if sess.Step == models.StepConfirm && affirmed {
		p.book(ctx, sessionID, sess, &result)
		result.Step = sess.Step
		if err := p.Store.Delete(ctx, sessionID); err != nil {
			p.logger().Warn("failed to delete completed session",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
		return result, nil
	}

	result.Step = sess.Step
	if err := p.Store.Save(ctx, sessionID, sess); err != nil {
		return TurnResult{}, fmt.Errorf("save session %q: %w", sessionID, err)
	}
	return result, nil
}

// applyExtraction merges newly extracted slots into the session and forces
// re-confirmation where the spec-relevant slots changed.
func (p *DefaultTurnProcessor) applyExtraction(ctx context.Context, sess *models.Session, text string, now time.Time) {
	before := sess.Captured

	fields := nlp.ExtractFields(text, sess.Captured, now)
	if fields.NeedsFallback() && p.Fallback != nil {
		fctx := ctx
		if p.LLMTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, p.LLMTimeout)
			defer cancel()
		}
		llm, err := p.Fallback.Extract(fctx, text, sess.Captured, todayISO(now))
		if err != nil {
			// Degrade to the rule-only result for this turn.
			p.logger().Warn("fallback extractor unavailable", zap.Error(err))
		} else {
			fields = nlp.Merge(fields, llm)
		}
	}

	c := &sess.Captured
	if fields.PatientName != "" {
		c.PatientName = fields.PatientName
	}
	if fields.PatientEmail != "" {
		c.PatientEmail = fields.PatientEmail
		sess.EmailConfirmed = false
		if sess.Step == models.StepAskEmail {
			sess.Step = models.StepConfirmEmail
		}
	}
	if fields.AppointmentDate != "" {
		c.AppointmentDate = fields.AppointmentDate
	}
	if fields.AppointmentTime != "" {
		c.AppointmentTime = fields.AppointmentTime
	}
	if fields.Reason != "" {
		c.Reason = fields.Reason
	}

	bothSet := c.AppointmentDate != "" && c.AppointmentTime != ""
	changed := c.AppointmentDate != before.AppointmentDate || c.AppointmentTime != before.AppointmentTime
	if bothSet && changed {
		sess.DatetimeConfirmed = false
		sess.Step = models.StepConfirmDatetime
	}
}

// book attempts the one-shot calendar booking. The session is terminal
// after any attempt; a failure is surfaced but never retried in-session.
func (p *DefaultTurnProcessor) book(ctx context.Context, sessionID string, sess *models.Session, result *TurnResult) {
	const apology = "I couldn't complete the booking just now. Would you like me to try again?"
	c := sess.Captured

	if c.AppointmentDate == "" {
		result.CalendarError = "Missing appointment date."
		result.BotText = apology
		p.record(ctx, sessionID, c, "error", result.CalendarError)
		return
	}

	timeStr := c.AppointmentTime
	if timeStr == "" {
		timeStr = "09:00"
	}
	loc := p.Loc
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", c.AppointmentDate+" "+timeStr, loc)
	if err != nil {
		result.CalendarError = fmt.Sprintf("invalid appointment datetime: %v", err)
		result.BotText = apology
		p.record(ctx, sessionID, c, "error", result.CalendarError)
		return
	}
	end := start.Add(30 * time.Minute)

	cctx := ctx
	if p.CalendarTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, p.CalendarTimeout)
		defer cancel()
	}
	res := p.Calendar.CreateEvent(cctx, models.BookingEvent{
		PatientName:  c.PatientName,
		PatientEmail: c.PatientEmail,
		Reason:       c.Reason,
		Start:        start,
		End:          end,
	})

	if res.Success() {
		result.BotText = "Your appointment is booked. You'll receive a confirmation by email shortly. Anything else I can help with?"
		result.SessionEnded = true
		recordID := p.record(ctx, sessionID, c, "success", res.Message)
		p.scheduleReminder(ctx, recordID, c, start)
		return
	}

	result.CalendarError = res.Message
	if result.CalendarError == "" {
		result.CalendarError = "Unknown calendar error"
	}
	result.BotText = apology
	p.record(ctx, sessionID, c, "error", result.CalendarError)
}

// record persists the booking attempt. Best effort: persistence problems
// are logged and never affect the turn.
func (p *DefaultTurnProcessor) record(ctx context.Context, sessionID string, c models.CapturedFields, status, message string) string {
	if p.Records == nil {
		return ""
	}
	id, err := p.Records.Create(ctx, models.AppointmentRecord{
		SessionID:       sessionID,
		PatientName:     c.PatientName,
		PatientEmail:    c.PatientEmail,
		AppointmentDate: c.AppointmentDate,
		AppointmentTime: c.AppointmentTime,
		Reason:          c.Reason,
		Status:          status,
		CalendarMessage: message,
	})
	if err != nil {
		p.logger().Warn("failed to persist appointment record",
			zap.String("sessionId", sessionID), zap.Error(err))
		return ""
	}
	return id
}

func (p *DefaultTurnProcessor) scheduleReminder(ctx context.Context, recordID string, c models.CapturedFields, start time.Time) {
	if p.Reminders == nil || recordID == "" {
		return
	}
	fireAt := start.Add(-30 * time.Minute)
	payload := models.ReminderPayload{
		RecordID:     recordID,
		PatientName:  c.PatientName,
		PatientEmail: c.PatientEmail,
		StartISO:     start.Format(time.RFC3339),
	}
	if err := p.Reminders.Schedule(ctx, payload, fireAt); err != nil {
		p.logger().Warn("failed to schedule appointment reminder",
			zap.String("recordId", recordID), zap.Error(err))
	}
}

func todayISO(now time.Time) string {
	return now.Format("2006-01-02")
}
