// Package apperr carries the engine's error taxonomy: validation,
// precondition, not-found, degraded and internal failures, each with a
// machine-readable reason code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindDegraded
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindDegraded:
		return "degraded"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Reason codes surfaced to callers.
const (
	CodeInvalidTrade    = "invalid_trade"
	CodeUnknownTeam     = "unknown_team"
	CodeDuplicateAsset  = "duplicate_asset"
	CodeInvalidAsset    = "invalid_asset"
	CodeInvalidRequest  = "invalid_request"
	CodeInvalidSport    = "invalid_sport"
	CodeNotOffseason    = "not_offseason"
	CodeNotCurrentPick  = "not_current_pick"
	CodeDraftReset      = "draft_reset"
	CodeDraftCompleted  = "draft_completed"
	CodeDraftNotDone    = "draft_not_completed"
	CodeProspectTaken   = "prospect_unavailable"
	CodeNoUserPicks     = "no_user_picks"
	CodeInvalidOrder    = "invalid_pick_order"
	CodeDraftData       = "draft_data_unavailable"
	CodeAlreadyBest     = "already_best"
	CodeTradeDecided    = "trade_already_decided"
	CodeUnknownFormat   = "unknown_format"
	CodeRateLimited     = "rate_limited"
	CodeNotFound        = "not_found"
	CodeSimulationError = "simulation_unavailable"
	CodeInternal        = "internal"
)

// Error is an error with a kind and reason code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Precondition(code, format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound never says whose resource it was.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
}

func RateLimited(format string, args ...any) *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: fmt.Sprintf(format, args...)}
}

func Degraded(code string, err error) *Error {
	return &Error{Kind: KindDegraded, Code: code, Message: "dependency unavailable", Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: msg, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal when it carries none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the reason code of err, or "" when it carries none.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
