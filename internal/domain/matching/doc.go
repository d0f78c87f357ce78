// Package matching implements the compatibility scorer: a pure function from
// two founder profiles to a weighted 0-100 match score, a per-dimension
// breakdown, human-readable reasons, and hard disqualifiers. It performs no
// I/O; the batch jobs feed it already-fetched profiles.
package matching
