// Package handle generates the random identifiers handlestore uses as keys.
//
// A handle is a fixed-length string drawn from a 62 character alphanumeric
// alphabet. Generation is pseudo-random and NOT cryptographically secure:
// handles are opaque keys, not secrets.
//
// # Sources
//
// Every generator call takes an explicit Source. Use NewSource with a fixed
// seed for reproducible output in tests:
//
//	src := handle.NewSource(42)
//	h := handle.Generate(src, 10) // same value on every run
//
// NewRandomSource returns a source seeded from the runtime.
//
// # Handle Space
//
// Space reports how many distinct handles exist for a length, and
// CollisionProbability gives the birthday bound for n insertions:
//
//	p := handle.CollisionProbability(1_000_000, 10) // ~6e-7
package handle
