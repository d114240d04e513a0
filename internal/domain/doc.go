// Package domain holds the core value types shared across the scoring,
// coverage, risk, and lifecycle packages: contacts with engagement counters,
// deals with pipeline stages, buying roles, and score snapshots.
//
// Everything here is a plain immutable value. Components receive fully
// materialized inputs and return results; no type in this package performs I/O.
package domain
