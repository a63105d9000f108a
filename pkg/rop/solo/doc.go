// Package solo contains single-value, synchronous helpers over Result[T].
//
// - Succeed/Fail/Cancel: construct Result[T]
// - Try: call a function (Out, error) and turn the error into failure or cancel
// - FailOnError: keep the value unless a check returns an error
// - Finally: reduce to a concrete value via success/error/cancel handlers
package solo
