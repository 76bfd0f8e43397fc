package query

import (
	"errors"
	"strings"
	"testing"
)

type hinter interface {
	error
	Hint() string
}

func TestErrorsCarryDistinctHints(t *testing.T) {
	tests := []struct {
		name        string
		err         hinter
		wantMessage string
		wantHint    string
	}{
		{
			name:        "unknown parameter",
			err:         &UnknownParameterError{Name: "region", Accepted: []string{"limit", "state"}},
			wantMessage: `unknown parameter "region"`,
			wantHint:    "limit, state",
		},
		{
			name:        "unknown parameter without declarations",
			err:         &UnknownParameterError{Name: "region"},
			wantMessage: `unknown parameter "region"`,
			wantHint:    "declares no parameters",
		},
		{
			name:        "missing parameter",
			err:         &MissingParameterError{Name: "state"},
			wantMessage: `missing required parameter "state"`,
			wantHint:    "--param state=VALUE",
		},
		{
			name:        "invalid request",
			err:         &InvalidRequestError{Status: 400, Message: "bad filter"},
			wantMessage: "status 400",
			wantHint:    "check that",
		},
		{
			name:        "unavailable",
			err:         &ApiUnavailableError{Err: errors.New("connection refused")},
			wantMessage: "unavailable",
			wantHint:    "not retried",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.wantMessage) {
				t.Errorf("Error() = %q, want it to contain %q", tt.err.Error(), tt.wantMessage)
			}
			if !strings.Contains(tt.err.Hint(), tt.wantHint) {
				t.Errorf("Hint() = %q, want it to contain %q", tt.err.Hint(), tt.wantHint)
			}
			if tt.err.Hint() == tt.err.Error() {
				t.Error("Hint() repeats Error(), want distinct guidance")
			}
		})
	}
}

func TestApiUnavailableUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ApiUnavailableError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() = false, want the cause to unwrap")
	}
}
