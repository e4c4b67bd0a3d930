// Package plan turns a validated resolution request into the sorted list of
// concrete objects to copy.
//
// Direct items are probed with HeadObject, wildcard items are expanded with
// a listing, and every resulting object gets its destination key. Any
// failure aborts the whole request; no partial plan is ever returned.
package plan
