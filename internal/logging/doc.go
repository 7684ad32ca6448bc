// Package logging centralizes slog construction and the structured field
// vocabulary shared across the daemon. The console handler renders compact
// operator-facing lines; the JSON handler is for log shipping.
package logging
