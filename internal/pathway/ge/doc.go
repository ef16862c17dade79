// Package ge tracks general-education progress. A Tracker owns an
// append-only ledger of credited courses and evaluates it from scratch
// against a GE pattern tree on every call.
package ge
