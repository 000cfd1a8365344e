// Package logging provides structured logging for the device configuration service.
//
// It wraps log/slog so that every component logs with the same handler,
// level and default fields (service, version).
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("device updated", "device_id", id, "events", n)
//
// Never log secrets or bearer tokens.
package logging
