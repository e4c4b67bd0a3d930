// Package head probes single S3 objects for the metadata the planner needs.
package head
