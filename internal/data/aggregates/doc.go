// Package aggregates contains infrastructure implementations of the learning aggregate contracts.
//
// Implementations compose table-level repos from internal/data/repos and own the
// transaction boundary of every invariant-critical write: attempt grading, module
// completion with its progress recompute, enrollment lifecycle and course structure changes.
package aggregates
