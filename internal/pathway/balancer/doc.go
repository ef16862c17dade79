// Package balancer picks one term's courses from an eligible candidate pool
// under a unit ceiling. It is a deterministic greedy pass with a fixed
// priority order and no backtracking, so later phases may leave capacity
// unused.
package balancer
