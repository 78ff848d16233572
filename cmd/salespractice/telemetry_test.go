package main

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/MrWong99/salespractice/internal/observe"
)

func TestTelemetry_StartsWithDefaultConfig(t *testing.T) {
	origTP, origMP, origProp := otel.GetTracerProvider(), otel.GetMeterProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
		otel.SetTextMapPropagator(origProp)
	})

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	pc := telemetryConfig(cfg)
	if pc.ServiceName != "salespractice" || pc.SampleRatio != 1 {
		t.Fatalf("telemetryConfig = %+v", pc)
	}

	shutdown, err := observe.InitProvider(context.Background(), pc)
	if err != nil {
		t.Fatalf("InitProvider with default config: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestTelemetry_ResourceSchemaMatchesSDK(t *testing.T) {
	origTP, origMP, origProp := otel.GetTracerProvider(), otel.GetMeterProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetMeterProvider(origMP)
		otel.SetTextMapPropagator(origProp)
	})

	for _, name := range []string{"", "salespractice-test"} {
		shutdown, err := observe.InitProvider(context.Background(), observe.ProviderConfig{ServiceName: name})
		if err != nil {
			if strings.Contains(err.Error(), "Schema URL") {
				t.Fatalf("service %q: resource schema conflicts with the SDK default: %v", name, err)
			}
			t.Fatalf("service %q: InitProvider: %v", name, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("service %q: shutdown: %v", name, err)
		}
	}
}
