// Package args implements the field codecs of the LocoNet wire format.
//
// Every LocoNet payload byte carries seven data bits; the most significant bit of a byte
// is reserved for opcodes. The types in this package wrap one or more of those payload
// bytes and expose the values packed into them (addresses, slot numbers, speed steps,
// status flags and function bits).
//
// All codec types are immutable values. They are created either from wire bytes with a
// ParseXxx function or from semantic values with a NewXxx constructor, and they are
// converted back to wire bytes with their Wire method. Parsing masks out-of-range bits
// instead of failing, with one exception: enumerated selectors that have no defined
// meaning (for example an unassigned decoder type in a slot status byte) return an
// error wrapping ErrUnmapped.
package args
