package rpcutil

import (
	"net/http"
	"testing"

	"github.com/chisports/gmengine/go/internal/apperr"
)

func TestJSONCodec(t *testing.T) {
	type msg struct {
		TradeID string `json:"trade_id"`
	}
	var c JSONCodec

	var out msg
	if err := c.Unmarshal([]byte(`{"trade_id":"abc"}`), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TradeID != "abc" {
		t.Fatalf("expected abc, got %q", out.TradeID)
	}

	if err := c.Unmarshal([]byte(`{"trade":"abc"}`), &out); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if err := c.Unmarshal([]byte("  "), &out); err != nil {
		t.Fatalf("expected empty body to decode as zero value, got %v", err)
	}
}

func TestUserID(t *testing.T) {
	h := http.Header{}
	if _, err := UserID(h); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	h.Set(UserHeader, " user-42 ")
	id, err := UserID(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user-42" {
		t.Fatalf("expected user-42, got %q", id)
	}
}
