// Package errs provides the error taxonomy shared by the freight engine.
//
// Every error type follows the same shape:
//   - a sentinel error variable (e.g. ErrTransitionDenied)
//   - a struct carrying the details
//   - constructors, with and without a cause where a cause makes sense
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The families map onto the engine's failure classes:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: a referenced load, bid, carrier or user does not exist
//   - TransitionDeniedError: the requested edge is not part of a state machine
//   - ConflictError: the state was already claimed, e.g. a load awarded to another bid
//   - ForbiddenError: the acting role may not perform the operation
//   - DependencyFailureError: a best-effort side effect failed after the core change committed
//
// Callers classify with errors.Is against the sentinels.
package errs
