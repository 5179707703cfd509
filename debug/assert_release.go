//go:build !debug

// Package debug provides assertions for invariants of the image format code.
// They are checked when building with the debug tag and compile to no-ops
// otherwise, so they may be used in the checksum loop.
package debug

// Enabled reports whether assertions are checked.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}
