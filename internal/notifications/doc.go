// Package notifications delivers pipeline progress and failure alerts
// through an ntfy topic. The service is a noop when no topic is
// configured, so callers never need to guard their notification calls.
package notifications
