// Package tiny provides a minimal fluent Chain[T] for synchronous
// composition of Result[T] values.
//
// - Start/FromValue: create a Chain
// - RepeatUntil: do-while loop over a single step
// - Ensure: trigger side effects without changing the result
//
// Reduce a chain to a concrete value with solo.Finally on its Result.
package tiny
