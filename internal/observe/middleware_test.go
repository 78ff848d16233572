package observe

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// harness wires the middleware to in-memory metric, trace and log sinks.
// Tests using it swap the global tracer provider and must not run in parallel.
type harness struct {
	reader *sdkmetric.ManualReader
	spans  *tracetest.InMemoryExporter
	logs   *bytes.Buffer
	h      http.Handler
}

func newHarness(t *testing.T, opts ...MiddlewareOption) *harness {
	t.Helper()
	m, reader := newTestMetrics(t)

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	opts = append([]MiddlewareOption{WithAccessLogger(logger)}, opts...)
	return &harness{reader: reader, spans: exp, logs: logs, h: Middleware(m, opts...)(mux)}
}

func (h *harness) do(method, path string, hdr http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func (h *harness) histogram(t *testing.T) metricdata.Histogram[float64] {
	t.Helper()
	rm := collect(t, h.reader)
	met := findMetric(rm, "salespractice.http.request.duration")
	if met == nil {
		t.Fatal("duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("duration metric is not a histogram")
	}
	return hist
}

func TestMiddleware_CorrelationID(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        string
	}{
		{name: "new trace"},
		{
			name:        "incoming traceparent",
			traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
			want:        "4bf92f3577b34da6a3ce929d0e0e4736",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			hdr := http.Header{}
			if tc.traceparent != "" {
				hdr.Set("traceparent", tc.traceparent)
			}
			got := h.do("GET", "/api/sessions/abc", hdr).Header().Get("X-Correlation-ID")
			if len(got) != 32 {
				t.Fatalf("X-Correlation-ID = %q, want 32 hex chars", got)
			}
			if tc.want != "" && got != tc.want {
				t.Errorf("X-Correlation-ID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMiddleware_SpanNamedAfterRoute(t *testing.T) {
	h := newHarness(t)
	h.do("GET", "/api/sessions/abc", nil)

	spans := h.spans.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name != "GET /api/sessions/{id}" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	var route string
	for _, a := range spans[0].Attributes {
		if a.Key == "http.route" {
			route = a.Value.AsString()
		}
	}
	if route != "GET /api/sessions/{id}" {
		t.Errorf("http.route = %q", route)
	}
}

func TestMiddleware_ServerErrorMarksSpan(t *testing.T) {
	h := newHarness(t)
	if rec := h.do("POST", "/api/chat", nil); rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}

	spans := h.spans.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status.Code)
	}
	var status int64
	for _, a := range spans[0].Attributes {
		if a.Key == "http.response.status_code" {
			status = a.Value.AsInt64()
		}
	}
	if status != http.StatusBadGateway {
		t.Errorf("http.response.status_code = %d", status)
	}
	if !strings.Contains(h.logs.String(), "level=WARN") {
		t.Errorf("server error not logged at warn:\n%s", h.logs.String())
	}
}

func TestMiddleware_DurationKeyedByRoute(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"a", "b", "c"} {
		h.do("GET", "/api/sessions/"+id, nil)
	}
	h.do("GET", "/nowhere", nil)

	counts := map[string]uint64{}
	for _, dp := range h.histogram(t).DataPoints {
		for _, kv := range dp.Attributes.ToSlice() {
			if kv.Key == "path" {
				counts[kv.Value.AsString()] = dp.Count
			}
		}
	}
	if counts["GET /api/sessions/{id}"] != 3 {
		t.Errorf("session route count = %d, want 3", counts["GET /api/sessions/{id}"])
	}
	if counts["unmatched"] != 1 {
		t.Errorf("unmatched count = %d, want 1", counts["unmatched"])
	}
	if len(counts) != 2 {
		t.Errorf("series = %v, want 2", counts)
	}
}

func TestMiddleware_AccessLog(t *testing.T) {
	h := newHarness(t, WithQuietPaths("/healthz"))
	h.do("GET", "/healthz", nil)
	if h.logs.Len() != 0 {
		t.Errorf("quiet path logged at info:\n%s", h.logs.String())
	}

	h.do("GET", "/api/sessions/abc", nil)
	line := h.logs.String()
	for _, want := range []string{"request completed", "status=200", "bytes=5", "path=/api/sessions/abc"} {
		if !strings.Contains(line, want) {
			t.Errorf("access log missing %q:\n%s", want, line)
		}
	}
}
