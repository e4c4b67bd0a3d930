// Package thaw decides whether archived objects are readable and starts
// restores for those that are not.
//
// A gate call never waits for a restore. It reports how many objects are
// still thawing and leaves the retry schedule to the caller, who repeats
// the call until nothing is thawing.
package thaw
