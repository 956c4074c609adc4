// Package logger is a standardized event logging framework for scripts run by
// the interpreter. Events are stored as newline delimited JSON so they can be
// summarized later with a Report.
package logger
