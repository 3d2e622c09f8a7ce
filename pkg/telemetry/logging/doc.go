// Package logging provides structured logging for creditgate.
//
// It is a thin layer over log/slog: New builds a process-wide logger from
// configuration (level, json/text format), and For derives component-scoped
// loggers carrying a stable "component" attribute.
package logging
