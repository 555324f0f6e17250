package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  HTTPError
		want int
	}{
		{&ValidationError{Message: "bad input"}, http.StatusBadRequest},
		{&NotFoundError{Message: "missing"}, http.StatusNotFound},
		{&ConfigError{Message: "unset"}, http.StatusInternalServerError},
		{&GatewayError{Message: "upstream broke"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := tc.err.StatusCode(); got != tc.want {
			t.Errorf("%T status = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&ValidationError{Message: "bad input"}, ErrValidation},
		{&NotFoundError{Message: "missing"}, ErrNotFound},
		{&ConfigError{Message: "unset"}, ErrConfig},
		{&GatewayError{Message: "upstream broke"}, ErrGateway},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("errors.Is(%T, %v) = false", tc.err, tc.sentinel)
		}
		// Matching must survive wrapping.
		if !errors.Is(fmt.Errorf("context: %w", tc.err), tc.sentinel) {
			t.Errorf("wrapped %T did not match %v", tc.err, tc.sentinel)
		}
	}

	if errors.Is(&ValidationError{Message: "bad input"}, ErrGateway) {
		t.Error("validation error must not match the gateway sentinel")
	}
}
