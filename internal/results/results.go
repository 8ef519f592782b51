// Package results defines the operation result envelope used by all
// application services.
//
// Success carries the payload of an applied operation. Failure carries a
// structured "not applied" payload for business no-ops and validation
// rejections (already processed, no active week, bad dates); these are
// not Go errors and must never be logged as failures. Error is reserved
// for infrastructure problems (database, platform API).
package results

// OperationResult is the tri-state outcome of a service operation.
type OperationResult struct {
	Success interface{}
	Failure interface{}
	Error   error
}

// SuccessResult wraps a success payload.
func SuccessResult(payload interface{}) OperationResult {
	return OperationResult{Success: payload}
}

// FailureResult wraps a business-failure payload.
func FailureResult(payload interface{}) OperationResult {
	return OperationResult{Failure: payload}
}

// ErrorResult wraps an infrastructure error.
func ErrorResult(err error) OperationResult {
	return OperationResult{Error: err}
}

// Applied reports whether the operation mutated state.
func (r OperationResult) Applied() bool {
	return r.Success != nil && r.Error == nil
}
