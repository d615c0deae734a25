package apperr

import (
	"connectrpc.com/connect"
)

// ReasonHeader carries the reason code on Connect errors.
const ReasonHeader = "reason-code"

// ToConnect maps an error onto a Connect error with a reason-code header.
// Internal errors hide their cause.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		return connect.NewError(connect.CodeInternal, errInternal)
	}
	var cerr *connect.Error
	switch e.Kind {
	case KindValidation:
		cerr = connect.NewError(connect.CodeInvalidArgument, e)
	case KindPrecondition:
		cerr = connect.NewError(connect.CodeFailedPrecondition, e)
	case KindNotFound:
		cerr = connect.NewError(connect.CodeNotFound, e)
	case KindRateLimited:
		cerr = connect.NewError(connect.CodeResourceExhausted, e)
	case KindDegraded:
		cerr = connect.NewError(connect.CodeUnavailable, e)
	default:
		cerr = connect.NewError(connect.CodeInternal, errInternal)
	}
	cerr.Meta().Set(ReasonHeader, e.Code)
	return cerr
}

var errInternal = &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal error"}
