// Package logging provides structured logging for the SmartIR dispatch
// tools.
//
// It wraps log/slog with level/format configuration and default
// service/version attributes. Loggers are passed explicitly to the
// components that need them; there is no package-level logger.
package logging
