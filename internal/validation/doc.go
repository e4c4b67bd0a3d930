// Package validation provides centralized input validation logic.
// This covers the structural and path-safety rules of a resolution request.
//
// Every rule runs over the whole batch before any request is sent to AWS,
// so one malformed item rejects the batch without partial work.
package validation
