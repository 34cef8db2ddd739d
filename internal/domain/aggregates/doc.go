// Package aggregates defines domain-facing aggregate contracts for course progress and quiz grading.
//
// These contracts avoid persistence/transport implementation details and represent
// semantic write boundaries where invariants must be enforced atomically.
package aggregates
