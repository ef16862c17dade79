// Package engine runs the term-by-term scheduling state machine. Each Run
// owns a fresh state (completed set, unit total, GE ledger) and drives the
// requirement resolver, prerequisite evaluator, GE tracker, and term balancer
// until the plan is complete, stalls, or hits the term safety ceiling. The
// Engine itself holds only immutable inputs and may serve concurrent runs.
package engine
