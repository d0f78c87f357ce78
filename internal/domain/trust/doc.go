// Package trust implements the trust score engine: activity-based decay,
// action boosts, and score distribution reporting. Everything here is pure
// computation over scores and activity counts; persistence and activity
// lookups belong to the jobs that drive the engine.
package trust
