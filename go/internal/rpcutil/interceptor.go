package rpcutil

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"
)

// NewLoggingInterceptor logs one line per unary call.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)

			evt := log.Info()
			if err != nil {
				evt = log.Warn().Str("code", connect.CodeOf(err).String()).Err(err)
			}
			evt.Str("procedure", req.Spec().Procedure).
				Str("user_id", req.Header().Get(UserHeader)).
				Dur("duration", time.Since(start)).
				Msg("rpc")
			return res, err
		}
	}
}
