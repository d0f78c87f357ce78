// Package jobs implements the batch jobs that drive the network: match
// generation, circle rotation, and trust decay. Each job iterates persisted
// records, applies the pure domain engines, and writes results back through
// the store interfaces.
//
// Jobs are idempotent: running the same job twice in succession creates no
// duplicate matches (existence check backed by the database constraint), no
// double rotation (the cadence check runs against the already-updated
// timestamp), and no decay beyond the per-run cap. A failure on one record
// is captured in the result's Errors list and the loop continues; only a
// failure to fetch the working set aborts a job.
package jobs
