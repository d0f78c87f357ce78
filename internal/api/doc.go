// Package api handles incoming HTTP requests for the job trigger surface:
// request validation, shared-secret authorization, and response formatting.
// It adapts HTTP concerns to the batch jobs in internal/jobs.
package api
