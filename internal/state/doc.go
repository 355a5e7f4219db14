// Package state persists per-task progress so a runner can be
// reconstructed after a restart. The dispatch core only threads a
// Cache through to runner construction; it never reads or writes task
// state itself.
package state
