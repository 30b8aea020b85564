package batch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"gptbridge/pkg/types"
)

// Journal records one entry per finished session. Record errors are logged
// and never fail the Generate call.
type Journal interface {
	Record(ctx context.Context, rec SessionRecord) error
}

// SessionRecord summarizes a finished session for the journal.
type SessionRecord struct {
	ID           string
	Model        string
	Prompts      int
	RequestPath  string
	ResponsePath string
	Status       string
	Error        string
	StartedAt    time.Time
	Duration     time.Duration
}

// Session statuses written to the journal.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Stats is a point-in-time snapshot of adapter activity.
type Stats struct {
	Inflight  int
	Completed uint64
	Failed    uint64
	LastError string
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithLogger installs a structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option { return func(a *Adapter) { a.log = l } }

// WithPublisher installs an EventPublisher for session events.
func WithPublisher(p EventPublisher) Option {
	return func(a *Adapter) {
		if p == nil {
			p = noopPublisher{}
		}
		a.publisher = p
	}
}

// WithJournal installs a session journal.
func WithJournal(j Journal) Option { return func(a *Adapter) { a.journal = j } }

// Adapter turns a batch of prompts into completions by running the tool once
// per call over a request/response file pair. Safe for concurrent use.
type Adapter struct {
	cfg       Config
	dir       string
	log       zerolog.Logger
	publisher EventPublisher
	journal   Journal
	throttle  *throttle

	inflight  atomic.Int64
	completed atomic.Uint64
	failed    atomic.Uint64
	mu        sync.Mutex
	lastErr   string
}

// New validates cfg and builds an Adapter. It touches neither the
// filesystem nor any process.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	if strings.TrimSpace(cfg.Executable) == "" {
		return nil, &ConfigurationError{Msg: "tool executable is not set"}
	}
	cfg = cfg.withDefaults()
	a := &Adapter{
		cfg:       cfg,
		dir:       SessionDir(cfg.TempDir),
		log:       zerolog.Nop(),
		publisher: noopPublisher{},
		throttle:  newThrottle(cfg.QueriesPerSecond, nil),
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Config returns the effective configuration (defaults applied).
func (a *Adapter) Config() Config { return a.cfg }

// SessionDir returns the directory that holds session files.
func (a *Adapter) SessionDir() string { return a.dir }

// Stats returns counters for status reporting.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	last := a.lastErr
	a.mu.Unlock()
	return Stats{
		Inflight:  int(a.inflight.Load()),
		Completed: a.completed.Load(),
		Failed:    a.failed.Load(),
		LastError: last,
	}
}

// Generate returns one completion per input, in input order.
//
// maxOutLen is forwarded to the tool only when Config.MaxOutFlag is set;
// otherwise it is ignored. The call blocks until the tool exits. Cancelling
// ctx terminates the tool and returns ctx's error. An empty batch returns an
// empty slice without starting the tool and counts as a completed call.
func (a *Adapter) Generate(ctx context.Context, inputs []types.PromptItem, maxOutLen int) ([]string, error) {
	questions, err := flatten(inputs)
	if err != nil {
		a.observe(err)
		return nil, err
	}
	if len(questions) == 0 {
		a.observe(nil)
		return []string{}, nil
	}
	if err := a.throttle.Wait(ctx); err != nil {
		a.observe(err)
		return nil, err
	}

	a.inflight.Add(1)
	inflightBatches.Inc()
	defer func() {
		a.inflight.Add(-1)
		inflightBatches.Dec()
	}()

	sess, err := newSession(a.dir)
	if err != nil {
		a.observe(err)
		return nil, err
	}
	start := time.Now()
	log := a.log.With().Str("session", sess.ID).Logger()
	log.Info().Int("prompts", len(questions)).Str("model", a.cfg.Model).Msg("session start")
	a.publisher.Publish(Event{Name: EventSessionStart, Session: sess.ID, Fields: map[string]any{
		"prompts": len(questions), "request": sess.RequestPath, "response": sess.ResponsePath,
	}})

	out, err := a.runSession(ctx, sess, questions, maxOutLen, log)
	a.flush(ctx, sess, len(questions), start, err, log)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) runSession(ctx context.Context, sess Session, questions []string, maxOutLen int, log zerolog.Logger) ([]string, error) {
	if err := writeRequests(sess.RequestPath, questions); err != nil {
		return nil, err
	}
	promptsTotal.Add(float64(len(questions)))

	spec := commandFor(a.cfg, sess, maxOutLen)
	procStart := time.Now()
	code, err := runTool(ctx, a.cfg, spec, sess.ID, log)
	processSeconds.Observe(time.Since(procStart).Seconds())
	log.Info().Int("exit_code", code).Dur("dur", time.Since(procStart)).Msg("process exit")
	a.publisher.Publish(Event{Name: EventProcessExit, Session: sess.ID, Fields: map[string]any{"exit_code": code}})
	if err != nil {
		return nil, err
	}

	recs, err := readResponses(sess.ResponsePath)
	if err != nil {
		return nil, err
	}
	out, err := reorder(recs, len(questions), !a.cfg.Lenient)
	if err != nil {
		return nil, err
	}
	if len(out) != len(questions) {
		log.Warn().Int("want", len(questions)).Int("got", len(out)).Msg("response count differs from request count; results may be misaligned")
	}
	return out, nil
}

// flush does per-call bookkeeping: metrics, events, journal and counters.
func (a *Adapter) flush(ctx context.Context, sess Session, prompts int, start time.Time, err error, log zerolog.Logger) {
	dur := time.Since(start)
	a.observe(err)
	rec := SessionRecord{
		ID:           sess.ID,
		Model:        a.cfg.Model,
		Prompts:      prompts,
		RequestPath:  sess.RequestPath,
		ResponsePath: sess.ResponsePath,
		Status:       StatusOK,
		StartedAt:    start,
		Duration:     dur,
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		log.Error().Err(err).Dur("dur", dur).Msg("session failed")
		a.publisher.Publish(Event{Name: EventSessionFailed, Session: sess.ID, Fields: map[string]any{"error": err.Error()}})
	} else {
		log.Info().Dur("dur", dur).Msg("session done")
		a.publisher.Publish(Event{Name: EventSessionDone, Session: sess.ID, Fields: map[string]any{"dur_ms": dur.Milliseconds()}})
	}
	if a.journal != nil {
		if jerr := a.journal.Record(context.WithoutCancel(ctx), rec); jerr != nil {
			log.Warn().Err(jerr).Msg("journal record failed")
		}
	}
}

func (a *Adapter) observe(err error) {
	callsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err == nil {
		a.completed.Add(1)
		return
	}
	a.failed.Add(1)
	a.mu.Lock()
	a.lastErr = err.Error()
	a.mu.Unlock()
}

// flatten validates every item before any file or process is touched.
func flatten(inputs []types.PromptItem) ([]string, error) {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		q, err := in.Question()
		if err != nil {
			return nil, &InvalidInputError{Index: i, Err: err}
		}
		out[i] = q
	}
	return out, nil
}
