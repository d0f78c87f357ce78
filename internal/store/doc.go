// Package store defines interfaces for data persistence operations over
// founders, matches, circles, and the activity log. These interfaces keep
// the matching and lifecycle engines independent of the database; the
// postgres implementations live under internal/platform/postgres.
package store