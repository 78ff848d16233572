// Package observe provides application-wide observability primitives for the
// sales practice service: OpenTelemetry metrics, distributed tracing,
// trace-aware structured logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all service metrics.
const meterName = "github.com/MrWong99/salespractice"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per upstream call ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// LLMDuration tracks chat completion latency. Use with attribute:
	//   attribute.String("call", ...) (chat, feedback, pitch_feedback, research)
	LLMDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency.
	TTSDuration metric.Float64Histogram

	// FetchDuration tracks research page download and extraction latency.
	FetchDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts provider API calls. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// FeedbackParses counts parsed coaching replies. Use with attributes:
	//   attribute.String("kind", ...) (conversation, pitch), attribute.String("method", ...)
	FeedbackParses metric.Int64Counter

	// ShortcutFeedbacks counts conversation feedback answered without a
	// model call. Use with attribute:
	//   attribute.String("reason", ...) (empty, minimal)
	ShortcutFeedbacks metric.Int64Counter

	// PersonaTurns counts customer replies. Use with attribute:
	//   attribute.String("persona", ...)
	PersonaTurns metric.Int64Counter

	// ToolCalls counts MCP tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter

	// LLMTokens counts tokens billed per chat completion. Use with attributes:
	//   attribute.String("call", ...), attribute.String("type", ...) (prompt, completion)
	LLMTokens metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live practice sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// hosted model and speech API round trips.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("salespractice.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMDuration, err = m.Float64Histogram("salespractice.llm.duration",
		metric.WithDescription("Latency of chat completions by call kind."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("salespractice.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FetchDuration, err = m.Float64Histogram("salespractice.research.fetch.duration",
		metric.WithDescription("Latency of research page download and extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("salespractice.provider.requests",
		metric.WithDescription("Total provider API requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.FeedbackParses, err = m.Int64Counter("salespractice.feedback.parses",
		metric.WithDescription("Total parsed coaching replies by kind and parse method."),
	); err != nil {
		return nil, err
	}
	if met.ShortcutFeedbacks, err = m.Int64Counter("salespractice.feedback.shortcuts",
		metric.WithDescription("Total conversation feedbacks answered without a model call."),
	); err != nil {
		return nil, err
	}
	if met.PersonaTurns, err = m.Int64Counter("salespractice.persona.turns",
		metric.WithDescription("Total customer replies by persona."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("salespractice.tool.calls",
		metric.WithDescription("Total MCP tool invocations by tool name and status."),
	); err != nil {
		return nil, err
	}

	if met.LLMTokens, err = m.Int64Counter("salespractice.llm.tokens",
		metric.WithDescription("Total tokens used by chat completions by call kind and token type."),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("salespractice.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("salespractice.active_sessions",
		metric.WithDescription("Number of live practice sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("salespractice.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest records a provider request counter increment with
// the standard attribute set.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordFeedbackParse records which parse path produced a feedback result.
func (m *Metrics) RecordFeedbackParse(ctx context.Context, kind, method string) {
	m.FeedbackParses.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("method", method),
		),
	)
}

// RecordShortcut records a conversation feedback answered without the model.
func (m *Metrics) RecordShortcut(ctx context.Context, reason string) {
	m.ShortcutFeedbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordPersonaTurn records one customer reply.
func (m *Metrics) RecordPersonaTurn(ctx context.Context, personaID string) {
	m.PersonaTurns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("persona", personaID)),
	)
}

// RecordToolCall records an MCP tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}

// RecordTokens adds the prompt and completion token counts of one chat
// completion. Zero counts are skipped; not every backend reports usage.
func (m *Metrics) RecordTokens(ctx context.Context, call string, prompt, completion int) {
	for _, tk := range [...]struct {
		typ string
		n   int
	}{{"prompt", prompt}, {"completion", completion}} {
		if tk.n <= 0 {
			continue
		}
		m.LLMTokens.Add(ctx, int64(tk.n),
			metric.WithAttributes(
				attribute.String("call", call),
				attribute.String("type", tk.typ),
			),
		)
	}
}
