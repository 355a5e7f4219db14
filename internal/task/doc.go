// Package task implements the dispatch core: it pulls task lifecycle
// events from an at-least-once queue, owns one runner per task, and
// drives each runner to completion with retry-on-failure, crash-safe
// redelivery, and graceful shutdown under cancellation.
package task
