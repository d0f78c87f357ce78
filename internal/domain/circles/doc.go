// Package circles implements circle formation and lifecycle governance:
// a greedy formation engine under balance constraints, entry and exit rules,
// rotation planning, dissolution checks, facilitator selection, and health
// classification. All functions are pure over already-fetched data; the batch
// jobs own persistence.
package circles
