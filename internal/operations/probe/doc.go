// Package probe checks that a destination accepts writes before a copy starts.
package probe
