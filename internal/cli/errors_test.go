package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/auth"
	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/query"
	"github.com/mbrcli/mbr/internal/tabular"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil",
			err:  nil,
			want: ExitOK,
		},
		{
			name: "missing config field",
			err:  &config.MissingFieldError{Field: "url"},
			want: ExitConfig,
		},
		{
			name: "store failure",
			err:  &storeError{err: errors.New("toml: line 3: expected value")},
			want: ExitConfig,
		},
		{
			name: "invalid url",
			err:  fmt.Errorf("%w: URL must have a host", config.ErrInvalidURL),
			want: ExitConfig,
		},
		{
			name: "missing credential",
			err:  &auth.MissingCredentialError{Profile: "default"},
			want: ExitAuth,
		},
		{
			name: "unauthorized",
			err:  &auth.UnauthorizedError{Mode: "api-key"},
			want: ExitAuth,
		},
		{
			name: "auth timeout",
			err:  &auth.TimeoutError{URL: "http://localhost:3000"},
			want: ExitAuth,
		},
		{
			name: "auth required mid-operation",
			err:  &auth.AuthRequiredError{Profile: "work"},
			want: ExitAuth,
		},
		{
			name: "unknown parameter",
			err:  &query.UnknownParameterError{Name: "state"},
			want: ExitValidation,
		},
		{
			name: "missing parameter",
			err:  &query.MissingParameterError{Name: "region"},
			want: ExitValidation,
		},
		{
			name: "argument error",
			err:  &ArgError{Reason: "question ID required"},
			want: ExitValidation,
		},
		{
			name: "unknown format",
			err:  &tabular.UnknownFormatError{Value: "xml"},
			want: ExitValidation,
		},
		{
			name: "invalid request",
			err:  &query.InvalidRequestError{Status: 404},
			want: ExitAPI,
		},
		{
			name: "api unavailable",
			err:  &query.ApiUnavailableError{Err: errors.New("connection refused")},
			want: ExitAPI,
		},
		{
			name: "raw status error",
			err:  &api.StatusError{StatusCode: 500, Endpoint: "/api/health"},
			want: ExitAPI,
		},
		{
			name: "plain error",
			err:  errors.New("something broke"),
			want: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeWrappedError(t *testing.T) {
	// Classification must see through fmt.Errorf wrapping.
	err := fmt.Errorf("running question: %w", &auth.AuthRequiredError{Profile: "default"})
	if got := ExitCode(err); got != ExitAuth {
		t.Errorf("ExitCode(wrapped) = %d, want %d", got, ExitAuth)
	}
}

func TestExitCodeValidationBeforeAPI(t *testing.T) {
	// A parameter error that wraps a server status keeps the validation
	// exit code.
	err := fmt.Errorf("%w", &query.UnknownParameterError{Name: "state"})
	if got := ExitCode(err); got != ExitValidation {
		t.Errorf("ExitCode = %d, want %d", got, ExitValidation)
	}
}

func TestPrintErrorWithHint(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, &auth.MissingCredentialError{Profile: "default"})

	got := buf.String()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if !strings.HasPrefix(lines[0], "Error: ") {
		t.Errorf("first line %q should start with %q", lines[0], "Error: ")
	}
	if !strings.Contains(lines[0], "no credential available") {
		t.Errorf("first line %q should contain the error message", lines[0])
	}
	if !strings.Contains(lines[1], "mbr auth login") {
		t.Errorf("hint line %q should mention the login command", lines[1])
	}
}

func TestPrintErrorWithoutHint(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("something broke"))

	want := "Error: something broke\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintError output = %q, want %q", got, want)
	}
}

func TestPrintErrorWrappedHint(t *testing.T) {
	// The hint must survive error wrapping.
	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("loading store: %w", &storeError{err: errors.New("permission denied")}))

	got := buf.String()
	if !strings.Contains(got, "mbr config path") {
		t.Errorf("output %q should carry the store hint", got)
	}
}

func TestArgError(t *testing.T) {
	err := &ArgError{Reason: "question ID required", Advice: "run 'mbr query --list' to find one"}
	if err.Error() != "question ID required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Hint() != "run 'mbr query --list' to find one" {
		t.Errorf("Hint() = %q", err.Hint())
	}
}
