package engine

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/cron"
	"github.com/xraph/tick/ext"
	"github.com/xraph/tick/job"
	mw "github.com/xraph/tick/middleware"
	"github.com/xraph/tick/observability"
	"github.com/xraph/tick/store"
)

// Engine is the wired system. Construct with New.
type Engine struct {
	store      store.Store
	cfg        tick.Config
	logger     *slog.Logger
	clock      func() time.Time
	registry   *job.Registry
	extensions *ext.Registry
	scheduler  *cron.Scheduler
	poller     *cron.Poller
	dispatcher *alert.Dispatcher

	// Collected by options, consumed once in New.
	sink alert.Sink
	exts []ext.Extension
	mws  []mw.Middleware

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg tick.Config) Option {
	return func(eng *Engine) { eng.cfg = cfg }
}

// WithLogger sets the logger for the engine and everything it wires.
func WithLogger(logger *slog.Logger) Option {
	return func(eng *Engine) {
		if logger != nil {
			eng.logger = logger
		}
	}
}

// WithClock overrides the time source used for schedule seeding and
// the run loop. Tests use this to pin the pass instant.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.clock = now }
}

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) { eng.exts = append(eng.exts, e) }
}

// WithMiddleware appends middleware after the default chain.
func WithMiddleware(m ...mw.Middleware) Option {
	return func(eng *Engine) { eng.mws = append(eng.mws, m...) }
}

// WithSink enables alert dispatch through the given sink, with the
// engine's store as the suppression store.
func WithSink(s alert.Sink) Option {
	return func(eng *Engine) { eng.sink = s }
}

// WithDispatcher installs a pre-built alert dispatcher, overriding
// WithSink. The caller keeps control of its suppression store and
// retry policy.
func WithDispatcher(d *alert.Dispatcher) Option {
	return func(eng *Engine) { eng.dispatcher = d }
}

// WithTracerProvider sets a custom OTel TracerProvider. When set, the
// tracing middleware uses this provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) { eng.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider. When set, both
// the metrics middleware and the observability extension use this
// provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) { eng.meterProvider = mp }
}

// New wires an engine around the given store.
func New(s store.Store, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, tick.ErrNoStore
	}

	eng := &Engine{
		store:    s,
		cfg:      tick.DefaultConfig(),
		logger:   slog.Default(),
		registry: job.NewRegistry(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.clock == nil {
		eng.clock = func() time.Time { return time.Now().UTC() }
	}

	eng.extensions = ext.NewRegistry(eng.logger)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(eng.tracerProvider.Tracer("github.com/xraph/tick"))
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(eng.meterProvider.Meter("github.com/xraph/tick"))
	} else {
		metricsMw = mw.Metrics()
	}

	// Register the observability metrics extension, then the caller's.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(eng.meterProvider.Meter("github.com/xraph/tick/observability"))
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)
	for _, e := range eng.exts {
		eng.extensions.Register(e)
	}

	// Default chain: recover → tracing → metrics → logging → scope,
	// then the caller's middleware.
	chain := []mw.Middleware{
		mw.Recover(eng.logger),
		tracingMw,
		metricsMw,
		mw.Logging(eng.logger),
		mw.Scope(),
	}
	chain = append(chain, eng.mws...)

	// Build the alert dispatcher unless one was installed.
	if eng.dispatcher == nil && eng.sink != nil {
		d, err := alert.NewDispatcher(eng.sink,
			alert.WithStore(s),
			alert.WithRetention(eng.cfg.AlertRetention),
			alert.WithLogger(eng.logger),
		)
		if err != nil {
			return nil, err
		}
		eng.dispatcher = d
	}

	schedOpts := []cron.SchedulerOption{
		cron.WithLogger(eng.logger),
		cron.WithClock(eng.clock),
		cron.WithConcurrency(eng.cfg.Concurrency),
		cron.WithMiddleware(chain...),
		cron.WithExtensions(eng.extensions),
	}
	if eng.cfg.LeaseTTL > 0 {
		schedOpts = append(schedOpts, cron.WithLease(eng.cfg.LeaseTTL))
	}

	scheduler, err := cron.NewScheduler(s, eng.registry, schedOpts...)
	if err != nil {
		return nil, err
	}
	eng.scheduler = scheduler
	eng.poller = cron.NewPoller(scheduler, eng.cfg.PollInterval, eng.logger)

	return eng, nil
}

// Register registers a typed job definition with the engine.
func Register[T any](eng *Engine, def *job.Definition[T]) {
	job.RegisterDefinition(eng.registry, def)
}

// RegisterFunc binds an untyped handler to a function name.
func (eng *Engine) RegisterFunc(name string, h job.HandlerFunc) {
	eng.registry.Register(name, h)
}

// StartPoller begins periodic due-job passes at the configured
// PollInterval. Without it the engine runs only when triggered.
func (eng *Engine) StartPoller(ctx context.Context) error {
	return eng.poller.Start(ctx)
}

// Close stops the poller, waiting up to ctx for an in-flight pass,
// and fires the shutdown hooks. The store stays open; its lifecycle
// belongs to whoever created it.
func (eng *Engine) Close(ctx context.Context) error {
	err := eng.poller.Stop(ctx)
	if err != nil {
		eng.logger.Error("poller stop error", slog.String("error", err.Error()))
	}
	eng.extensions.EmitShutdown(ctx)
	return err
}

// Store returns the engine's store.
func (eng *Engine) Store() store.Store { return eng.store }

// Registry returns the function registry.
func (eng *Engine) Registry() *job.Registry { return eng.registry }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// Scheduler returns the run loop.
func (eng *Engine) Scheduler() *cron.Scheduler { return eng.scheduler }

// Config returns the engine configuration.
func (eng *Engine) Config() tick.Config { return eng.cfg }

// Logger returns the engine logger.
func (eng *Engine) Logger() *slog.Logger { return eng.logger }
