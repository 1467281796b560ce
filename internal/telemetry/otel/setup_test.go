package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "auth-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Fatal("expected no-op providers, got nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProviders_WhitespaceEndpoint(t *testing.T) {
	p, err := NewProviders(context.Background(), "   ", "auth-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Fatal("expected no-op providers")
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	_, err := NewProviders(context.Background(), "http://", "auth-test", false)
	if err == nil {
		t.Fatal("expected error for endpoint without host")
	}
}

func TestSetGlobal_NoPanic(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "auth-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	p.SetGlobal()
}

func TestNewAuthMetrics(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "auth-test", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	m, err := NewAuthMetrics(p.MeterProvider)
	if err != nil {
		t.Fatalf("NewAuthMetrics: %v", err)
	}
	ctx := context.Background()
	m.RecordLogin(ctx, "success")
	m.RecordRotation(ctx, "reuse")
	m.RecordReuseDetected(ctx)
	m.RecordVerification(ctx, "blacklisted")
}

func TestAuthMetrics_NilReceiver(t *testing.T) {
	var m *AuthMetrics
	ctx := context.Background()
	m.RecordLogin(ctx, "success")
	m.RecordRotation(ctx, "success")
	m.RecordReuseDetected(ctx)
	m.RecordVerification(ctx, "success")
}
