// Package list handles S3 object listing operations.
// This includes page-by-page listing and the bounded wildcard expansion
// that turns a folder reference into the objects below it.
//
// Expansion is lazy: pages are fetched only as the caller ranges over the
// sequence, and the safety ceiling is checked as objects are produced.
package list
