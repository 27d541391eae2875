package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"bmi-client/internal/bmi"
	"bmi-client/internal/client"
	"bmi-client/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Request timeouts for every calculate operation.
const (
	ConnectTimeout = 5000 * time.Millisecond
	ReadTimeout    = 7000 * time.Millisecond
)

const eventBuffer = 16

var tracer = otel.Tracer("bmi-client/coordinator")

var (
	// ErrStopped is returned by Trigger once Run has returned.
	ErrStopped = errors.New("coordinator stopped")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("coordinator already running")
)

// Poster sends one calculate request.
type Poster interface {
	Post(ctx context.Context, endpoint string, payload bmi.RequestPayload, connectTimeout, readTimeout time.Duration) (client.RawResponse, error)
}

// Collaborator is the presentation side of the coordinator. Every method is
// called from the goroutine running Run, one at a time.
type Collaborator interface {
	OnValidationError(err *bmi.ValidationError)
	OnOperationStarted()
	OnOperationSucceeded(rendered string)
	OnOperationFailed(message string)
	// OnOperationFinished runs after the success or failure callback of
	// every started operation, including ones that panicked.
	OnOperationFinished()
}

// Coordinator turns calculate triggers into at most one outstanding request
// and reports each phase to a Collaborator.
type Coordinator struct {
	poster         Poster
	apiURL         string
	connectTimeout time.Duration
	readTimeout    time.Duration

	events  chan event
	done    chan struct{}
	running atomic.Bool
	state   atomic.Pointer[State]

	// owned by the Run goroutine
	current *operation
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeouts overrides ConnectTimeout and ReadTimeout.
func WithTimeouts(connect, read time.Duration) Option {
	return func(c *Coordinator) {
		c.connectTimeout = connect
		c.readTimeout = read
	}
}

// New builds a Coordinator that posts to apiURL.
func New(poster Poster, apiURL string, opts ...Option) *Coordinator {
	c := &Coordinator{
		poster:         poster,
		apiURL:         apiURL,
		connectTimeout: ConnectTimeout,
		readTimeout:    ReadTimeout,
		events:         make(chan event, eventBuffer),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.publish(idleState())
	return c
}

type event interface{ isEvent() }

type triggerEvent struct {
	ctx    context.Context
	weight string
	height string
}

type completionEvent struct {
	op   *operation
	resp client.RawResponse
	err  error
}

func (triggerEvent) isEvent()    {}
func (completionEvent) isEvent() {}

type operation struct {
	id      string
	ctx     context.Context
	span    trace.Span
	started time.Time
}

// Trigger asks for a calculate operation with the raw field texts. It never
// waits for the request itself; while one is outstanding the trigger is
// dropped by the loop.
func (c *Coordinator) Trigger(ctx context.Context, weightText, heightText string) error {
	select {
	case <-c.done:
		return ErrStopped
	default:
	}

	select {
	case c.events <- triggerEvent{ctx: ctx, weight: weightText, height: heightText}:
		return nil
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current operation state.
func (c *Coordinator) Snapshot() State {
	return *c.state.Load()
}

// InFlight reports 1 while a request is outstanding.
func (c *Coordinator) InFlight() float64 {
	if c.Snapshot().InFlight() {
		return 1
	}
	return 0
}

// Run processes triggers and completions until ctx is done. Collaborator
// callbacks are made from this goroutine only.
func (c *Coordinator) Run(ctx context.Context, ui Collaborator) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	observability.Logger.Debug("coordinator started",
		zap.String("api_url", c.apiURL),
		zap.Duration("connect_timeout", c.connectTimeout),
		zap.Duration("read_timeout", c.readTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			if c.current != nil {
				c.current.span.SetStatus(codes.Error, "abandoned on shutdown")
				c.current.span.End()
				c.current = nil
			}
			observability.Logger.Debug("coordinator stopped")
			return nil
		case ev := <-c.events:
			switch ev := ev.(type) {
			case triggerEvent:
				c.handleTrigger(ev, ui)
			case completionEvent:
				c.handleCompletion(ev, ui)
			}
		}
	}
}

func (c *Coordinator) handleTrigger(ev triggerEvent, ui Collaborator) {
	if c.current != nil {
		observability.Logger.Debug("trigger ignored while request in flight",
			zap.String("request_id", c.current.id))
		return
	}

	pair, err := bmi.Validate(ev.weight, ev.height)
	if err != nil {
		var verr *bmi.ValidationError
		if !errors.As(err, &verr) {
			verr = &bmi.ValidationError{Kind: bmi.NotNumeric}
		}
		observability.Logger.Debug("input rejected",
			zap.String("kind", string(verr.Kind)),
			zap.String("field", verr.Field),
		)
		c.notify(func() { ui.OnValidationError(verr) })
		return
	}

	id := observability.NewRequestID()
	ctx := observability.ContextWithRequestID(context.WithoutCancel(ev.ctx), id)
	ctx, span := tracer.Start(ctx, "bmi.calculate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("request.id", id),
			attribute.Float64("bmi.weight", pair.Weight),
			attribute.Float64("bmi.height", pair.Height),
		),
	)

	op := &operation{id: id, ctx: ctx, span: span, started: time.Now()}
	c.current = op
	c.publish(State{Phase: PhaseInFlight, Status: StatusSending, RequestID: id})

	observability.LoggerWithTrace(ctx).Info("sending request",
		zap.String("request_id", id),
		zap.String("url", c.apiURL),
	)
	c.notify(ui.OnOperationStarted)

	go c.dispatch(op, pair.Payload())
}

// dispatch runs on its own goroutine and always reports back to the loop.
func (c *Coordinator) dispatch(op *operation, payload bmi.RequestPayload) {
	ev := completionEvent{op: op}

	defer func() {
		if r := recover(); r != nil {
			ev.resp = client.RawResponse{}
			ev.err = fmt.Errorf("panic during request: %v", r)
		}
		select {
		case c.events <- ev:
		case <-c.done:
		}
	}()

	ev.resp, ev.err = c.poster.Post(op.ctx, c.apiURL, payload, c.connectTimeout, c.readTimeout)
}

func (c *Coordinator) handleCompletion(ev completionEvent, ui Collaborator) {
	op := ev.op
	if op != c.current {
		observability.Logger.Warn("dropping stale completion", zap.String("request_id", op.id))
		return
	}

	defer c.finish(op, ui)

	if ev.err != nil {
		c.fail(op, ev.err, ui)
		return
	}
	c.succeed(op, ev.resp, ui)
}

func (c *Coordinator) succeed(op *operation, resp client.RawResponse, ui Collaborator) {
	logger := observability.LoggerWithTrace(op.ctx)
	elapsed := time.Since(op.started)

	summary := bmi.NewSummary(resp.Body, resp.StatusCode, resp.ErrorBody)
	rendered := summary.Render()

	op.span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Bool("bmi.parsed", !summary.Result.Empty()),
	)
	op.span.AddEvent("response.rendered")
	op.span.SetStatus(codes.Ok, "")

	opsCounter.Add(op.ctx, 1, metric.WithAttributes(attribute.String("outcome", string(PhaseSucceeded))))
	opsHistogram.Record(op.ctx, float64(elapsed.Microseconds())/1000)
	if summary.Result.BMI != nil {
		resultGauge.Record(op.ctx, *summary.Result.BMI)
	}

	c.publish(State{
		Phase:      PhaseSucceeded,
		Status:     StatusDone,
		RequestID:  op.id,
		Result:     summary.Result,
		Rendered:   rendered,
		FinishedAt: time.Now(),
	})

	fields := []zap.Field{
		zap.String("request_id", op.id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	}
	if summary.Result.BMI != nil {
		fields = append(fields, zap.Float64("bmi", *summary.Result.BMI))
	}
	logger.Info("request completed", fields...)
	if summary.Result.Empty() {
		logger.Warn("response had no recognised fields", zap.String("request_id", op.id))
	}

	c.notify(func() { ui.OnOperationSucceeded(rendered) })
}

func (c *Coordinator) fail(op *operation, err error, ui Collaborator) {
	logger := observability.LoggerWithTrace(op.ctx)
	elapsed := time.Since(op.started)
	rerr := client.AsRequestError("coordinator.calculate", err)

	opsCounter.Add(op.ctx, 1, metric.WithAttributes(attribute.String("outcome", string(PhaseFailed))))
	opsHistogram.Record(op.ctx, float64(elapsed.Microseconds())/1000)
	observability.RecordError(op.ctx, op.span, logger, errorCounter, string(rerr.Kind), "request failed", rerr)

	msg := rerr.Message()
	c.publish(State{
		Phase:      PhaseFailed,
		Status:     StatusError,
		RequestID:  op.id,
		Kind:       rerr.Kind,
		Message:    msg,
		FinishedAt: time.Now(),
	})

	c.notify(func() { ui.OnOperationFailed(msg) })
}

// finish is deferred by handleCompletion. A panic while handling the
// response still ends in the failed state and re-enables the trigger.
func (c *Coordinator) finish(op *operation, ui Collaborator) {
	if r := recover(); r != nil {
		c.fail(op, fmt.Errorf("handling response: panic: %v", r), ui)
	}
	c.current = nil
	op.span.End()
	c.notify(ui.OnOperationFinished)
}

// notify shields the loop from a misbehaving collaborator.
func (c *Coordinator) notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			observability.Logger.Error("collaborator callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

func (c *Coordinator) publish(s State) {
	c.state.Store(&s)
}
