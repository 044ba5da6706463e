// Package tripplanner turns a trip request into a day-by-day itinerary by
// driving a model through the location and line tools.
package tripplanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/tripplanner/itinerary"
	"github.com/c360studio/tripplanner/llm"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/c360studio/tripplanner/processor/trip-planner"

// Completer is the subset of the LLM client used by LLMGenerator.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Generation is what the model produced for one prompt.
type Generation struct {
	ToolCalls []llm.ToolCall
	Text      string
	Model     string
}

// Generator invokes the model with a prompt and the tool schema.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, tools []llm.ToolDefinition) (*Generation, error)
}

// LLMGenerator adapts an llm.Client to Generator.
type LLMGenerator struct {
	client      Completer
	capability  string
	temperature float64
	maxTokens   int
}

// NewLLMGenerator creates a generator that calls client with cfg's model settings.
func NewLLMGenerator(client Completer, cfg Config) *LLMGenerator {
	return &LLMGenerator{
		client:      client,
		capability:  cfg.Capability,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate sends the prompt with tool choice left to the model, so a model
// that answers in text still reaches the legacy parser.
func (g *LLMGenerator) Generate(ctx context.Context, prompt Prompt, tools []llm.ToolDefinition) (*Generation, error) {
	temperature := g.temperature
	resp, err := g.client.Complete(ctx, llm.Request{
		Capability:  g.capability,
		Messages:    prompt.Messages(),
		Temperature: &temperature,
		MaxTokens:   g.maxTokens,
		Tools:       tools,
		ToolChoice:  llm.ToolChoiceAuto,
	})
	if err != nil {
		return nil, err
	}
	return &Generation{ToolCalls: resp.ToolCalls, Text: resp.Content, Model: resp.Model}, nil
}

// Planner runs the itinerary pipeline. It holds no per-request state and is
// safe for concurrent use.
type Planner struct {
	generator Generator
	policy    itinerary.Policy
	timezones TimezoneResolver
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	tracer    trace.Tracer
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithPolicy sets the planning constants.
func WithPolicy(policy itinerary.Policy) Option {
	return func(p *Planner) {
		p.policy = itinerary.DefaultPolicy().Override(policy)
	}
}

// WithTimezoneResolver stamps locations with their timezone and computes
// "today" in the destination's zone.
func WithTimezoneResolver(r TimezoneResolver) Option {
	return func(p *Planner) {
		p.timezones = r
	}
}

// WithMetrics records planner metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// New creates a planner that reaches the model through gen.
func New(gen Generator, opts ...Option) *Planner {
	p := &Planner{
		generator: gen,
		policy:    itinerary.DefaultPolicy(),
		logger:    slog.Default(),
		now:       time.Now,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle runs Plan and wraps the outcome in the Result envelope.
func (p *Planner) Handle(ctx context.Context, req itinerary.Request) itinerary.Result {
	plan, err := p.Plan(ctx, req)
	if err != nil {
		return itinerary.Failed(err)
	}
	return itinerary.Succeeded(plan)
}

// Plan builds an itinerary for req. Any stage failure aborts the run; no
// partial plan is returned.
func (p *Planner) Plan(ctx context.Context, req itinerary.Request) (*itinerary.TripPlanResponse, error) {
	ctx, span := p.tracer.Start(ctx, "trip_planner.plan")
	defer span.End()

	traceID := uuid.New().String()
	if sc := span.SpanContext(); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	ctx = llm.WithTraceContext(ctx, llm.TraceContext{TraceID: traceID})
	logger := p.logger.With("trace_id", traceID)

	plan, err := p.run(ctx, req, logger)
	outcome := outcomeOf(err)
	p.metrics.observeOutcome(outcome)
	span.SetAttributes(attribute.String("plan.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logger.Warn("Trip plan failed", "outcome", outcome, "error", err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("Trip plan generated",
		"trip_type", plan.TripSummary.TripType,
		"locations", len(plan.Destinations),
		"routes", len(plan.Routes),
		"days", len(plan.DailyItinerary),
		"modified", plan.TripSummary.Modified)
	return plan, nil
}

func (p *Planner) run(ctx context.Context, req itinerary.Request, logger *slog.Logger) (*itinerary.TripPlanResponse, error) {
	now := p.now()

	n, err := p.normalize(ctx, req, now)
	if err != nil {
		return nil, err
	}
	logger = logger.With("destination", n.Destination, "trip_type", n.TripType, "mode", n.Mode)

	gen, err := p.generate(ctx, n, logger)
	if err != nil {
		return nil, err
	}

	ex, err := p.extract(ctx, n, gen, logger)
	if err != nil {
		return nil, err
	}

	routes := ex.Routes
	if len(routes) == 0 && len(ex.Locations) >= 2 {
		routes = SynthesizeRoutes(ex.Locations)
		p.metrics.observeSynthesized(len(routes))
		logger.Debug("Synthesized routes", "count", len(routes))
	}

	_, span := p.tracer.Start(ctx, "trip_planner.assemble")
	defer span.End()

	today := localDate(now, ex.Locations[0].Timezone)
	days := GroupDays(n, ex.Locations, p.policy, today)
	plan := Assemble(n, ex.Locations, routes, days, p.policy)

	span.SetAttributes(
		attribute.Int("plan.days", len(days)),
		attribute.Int("plan.routes", len(routes)),
		attribute.Float64("plan.total_cost", plan.TripSummary.TotalEstimatedCost))
	return plan, nil
}

func (p *Planner) normalize(ctx context.Context, req itinerary.Request, now time.Time) (*itinerary.NormalizedRequest, error) {
	_, span := p.tracer.Start(ctx, "trip_planner.normalize")
	defer span.End()

	n, err := itinerary.Normalize(req, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("trip.destination", n.Destination),
		attribute.String("trip.type", string(n.TripType)),
		attribute.Int("trip.days", n.DurationDays),
		attribute.Bool("trip.modify", n.Modifying()))
	return n, nil
}

func (p *Planner) generate(ctx context.Context, n *itinerary.NormalizedRequest, logger *slog.Logger) (*Generation, error) {
	ctx, span := p.tracer.Start(ctx, "trip_planner.generate")
	defer span.End()

	prompt := ComposePrompt(n)
	span.SetAttributes(attribute.Int("prompt.length", len(prompt.System)+len(prompt.User)))

	start := time.Now()
	gen, err := p.generator.Generate(ctx, prompt, ToolSchema())
	elapsed := time.Since(start)
	p.metrics.observeModelLatency(elapsed.Seconds())
	span.SetAttributes(attribute.Int64("response.latency_ms", elapsed.Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model invocation failed")
		return nil, fmt.Errorf("%w: %w", itinerary.ErrModelInvocation, err)
	}
	if gen == nil {
		gen = &Generation{}
	}

	span.SetAttributes(
		attribute.String("model.name", gen.Model),
		attribute.Int("response.tool_calls", len(gen.ToolCalls)),
		attribute.Int("response.length", len(gen.Text)))
	logger.Debug("Model responded",
		"model", gen.Model,
		"tool_calls", len(gen.ToolCalls),
		"text_length", len(gen.Text),
		"latency", elapsed)
	return gen, nil
}

func (p *Planner) extract(ctx context.Context, n *itinerary.NormalizedRequest, gen *Generation, logger *slog.Logger) (Extraction, error) {
	_, span := p.tracer.Start(ctx, "trip_planner.extract")
	defer span.End()

	hint := ExtractHint{
		Country:   itinerary.CountryFor(n.Destination),
		Tolerance: p.policy.CoordinateTolerance,
		Timezones: p.timezones,
	}

	var ex Extraction
	if len(gen.ToolCalls) > 0 {
		ex = ExtractCalls(gen.ToolCalls, hint, logger)
		p.metrics.observeExtraction(ex)
	}

	// Tool calls that produced no location fall back to the reply text.
	fromText := false
	if len(ex.Locations) == 0 && (len(gen.ToolCalls) == 0 || gen.Text != "") {
		calls, err := ParseLegacyText(gen.Text)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unparseable model response")
			return Extraction{}, err
		}
		fromText = true
		p.metrics.observeFallback()
		logger.Info("No locations from tool calls, parsed legacy text",
			"tool_calls", len(gen.ToolCalls), "calls", len(calls))

		ex = ExtractCalls(calls, hint, logger)
		p.metrics.observeExtraction(ex)
	}

	span.SetAttributes(
		attribute.Bool("extract.from_text", fromText),
		attribute.Int("extract.locations", len(ex.Locations)),
		attribute.Int("extract.routes", len(ex.Routes)),
		attribute.Int("extract.skipped", ex.Skipped+ex.Unmatched))

	if len(ex.Locations) == 0 {
		err := fmt.Errorf("%w: no usable locations in %d tool calls",
			itinerary.ErrUnparseableModelResponse, len(gen.ToolCalls))
		span.RecordError(err)
		span.SetStatus(codes.Error, "no locations")
		return Extraction{}, err
	}
	return ex, nil
}

// outcomeOf classifies a pipeline error for metrics and transports.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, itinerary.ErrMissingDestination), errors.Is(err, itinerary.ErrInvalidRequest):
		return OutcomeInvalidRequest
	case errors.Is(err, itinerary.ErrModelInvocation):
		return OutcomeModelError
	case errors.Is(err, itinerary.ErrUnparseableModelResponse):
		return OutcomeUnparseable
	default:
		return OutcomeModelError
	}
}
