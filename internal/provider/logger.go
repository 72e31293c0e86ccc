package provider

import (
	"time"

	"go.uber.org/zap"
)

// LogRequest logs an upstream request being made.
func LogRequest(provider, method, url string) {
	zap.L().Debug("upstream request",
		zap.String("provider", provider), zap.String("method", method), zap.String("url", url))
}

// LogResponse logs an upstream response received.
func LogResponse(provider string, statusCode int, duration time.Duration, resultCount int) {
	zap.L().Info("upstream response",
		zap.String("provider", provider),
		zap.Int("status", statusCode),
		zap.Duration("duration", duration),
		zap.Int("results", resultCount))
}

// LogError logs an error from an upstream operation.
func LogError(provider, operation string, err error) {
	zap.L().Warn("upstream error",
		zap.String("provider", provider), zap.String("op", operation), zap.Error(err))
}

// LogTransform logs transformation of raw records.
func LogTransform(provider string, inputCount, outputCount int, duration time.Duration) {
	zap.L().Debug("transformed records",
		zap.String("provider", provider),
		zap.Int("in", inputCount),
		zap.Int("out", outputCount),
		zap.Duration("duration", duration))
}
