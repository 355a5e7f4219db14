// Package api exposes the dispatcher's operator control surface over
// HTTP: health, status, and a graceful stop trigger. The dispatcher is
// passed in by injection; nothing here reaches for process globals.
package api
