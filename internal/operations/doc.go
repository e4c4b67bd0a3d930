// Package operations contains the S3 calls the planner is built from.
// Each operation lives in its own subpackage and talks to S3 only through
// the s3api.S3API interface, so every one of them can run against a mock.
package operations
