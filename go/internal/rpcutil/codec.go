// Package rpcutil holds the Connect plumbing shared by every service: the
// JSON codec for plain Go message types, caller identity and logging.
package rpcutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// JSONCodec lets Connect carry plain structs as application/json.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// HandlerOptions are applied to every unary handler.
func HandlerOptions(extra ...connect.HandlerOption) []connect.HandlerOption {
	opts := []connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(NewLoggingInterceptor()),
	}
	return append(opts, extra...)
}

// ClientOptions configure outbound Connect clients to speak JSON.
func ClientOptions(extra ...connect.ClientOption) []connect.ClientOption {
	opts := []connect.ClientOption{connect.WithCodec(JSONCodec{})}
	return append(opts, extra...)
}

// Procedure builds "/<service>/<method>".
func Procedure(service, method string) string {
	return "/" + service + "/" + method
}
