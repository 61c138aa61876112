package logging

import (
	"context"
)

const (
	AlertIDKey       = "alert_id"
	RequestIDKey     = "request_id"
	ComponentNameKey = "component"
)

func WithAlertID(ctx context.Context, alertID string) context.Context {
	return context.WithValue(ctx, AlertIDKey, alertID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentNameKey, component)
}

func GetAlertID(ctx context.Context) string {
	if alertID, ok := ctx.Value(AlertIDKey).(string); ok {
		return alertID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetComponent(ctx context.Context) string {
	if component, ok := ctx.Value(ComponentNameKey).(string); ok {
		return component
	}
	return ""
}

// GetLogFields collects the known context values into a flat
// key/value list suitable for a sugared logger.
func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if alertID := GetAlertID(ctx); alertID != "" {
		fields = append(fields, AlertIDKey, alertID)
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, RequestIDKey, requestID)
	}
	if component := GetComponent(ctx); component != "" {
		fields = append(fields, ComponentNameKey, component)
	}

	return fields
}
