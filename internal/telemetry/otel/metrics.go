package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics holds counters for the token lifecycle code paths. All methods
// are safe on a nil receiver so callers can skip wiring in tests.
type AuthMetrics struct {
	logins        metric.Int64Counter
	rotations     metric.Int64Counter
	reuseDetected metric.Int64Counter
	verifications metric.Int64Counter
}

// NewAuthMetrics registers the auth counters on the given meter provider.
func NewAuthMetrics(mp metric.MeterProvider) (*AuthMetrics, error) {
	meter := mp.Meter("booking-platform/auth")

	logins, err := meter.Int64Counter("auth.logins",
		metric.WithDescription("Login attempts by result"))
	if err != nil {
		return nil, err
	}
	rotations, err := meter.Int64Counter("auth.token_rotations",
		metric.WithDescription("Refresh token rotations by result"))
	if err != nil {
		return nil, err
	}
	reuse, err := meter.Int64Counter("auth.token_reuse_detected",
		metric.WithDescription("Refresh token reuse detections"))
	if err != nil {
		return nil, err
	}
	verifications, err := meter.Int64Counter("auth.token_verifications",
		metric.WithDescription("Access token verifications by result"))
	if err != nil {
		return nil, err
	}
	return &AuthMetrics{
		logins:        logins,
		rotations:     rotations,
		reuseDetected: reuse,
		verifications: verifications,
	}, nil
}

func (m *AuthMetrics) RecordLogin(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *AuthMetrics) RecordRotation(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.rotations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *AuthMetrics) RecordReuseDetected(ctx context.Context) {
	if m == nil {
		return
	}
	m.reuseDetected.Add(ctx, 1)
}

func (m *AuthMetrics) RecordVerification(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
