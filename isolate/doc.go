// File: isolate/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package isolate partitions execution into isolated domains and implements
// api.Isolation for them.
//
// A Domain is a single worker locked to its own OS thread. Code submitted
// with Run or Go executes on that thread, and CurrentDomain called from it
// reports the domain. Goroutines outside any domain report api.NoDomain.
//
// IsShareable is the default predicate: immutable-by-construction values
// (scalars, strings, and structs/arrays of them) and values implementing
// api.Shareable. Hosts with their own object model plug a different predicate
// with WithPredicate.
package isolate
