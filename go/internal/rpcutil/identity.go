package rpcutil

import (
	"net/http"
	"strings"

	"github.com/chisports/gmengine/go/internal/apperr"
)

// UserHeader carries the authenticated user id, set by the upstream auth proxy.
const UserHeader = "X-User-ID"

// UserID returns the caller's user id from the request headers.
func UserID(h http.Header) (string, error) {
	id := strings.TrimSpace(h.Get(UserHeader))
	if id == "" {
		return "", apperr.Validation(apperr.CodeInvalidRequest, "missing %s header", UserHeader)
	}
	return id, nil
}
