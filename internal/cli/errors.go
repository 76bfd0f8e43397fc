package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/mbrcli/mbr/internal/api"
	"github.com/mbrcli/mbr/internal/auth"
	"github.com/mbrcli/mbr/internal/config"
	"github.com/mbrcli/mbr/internal/query"
	"github.com/mbrcli/mbr/internal/tabular"
)

// Exit codes keep failure classes distinguishable for scripts.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitAuth       = 3
	ExitAPI        = 4
	ExitValidation = 5
)

// ArgError reports command input that fails local validation before
// anything else runs.
type ArgError struct {
	Reason string
	Advice string
}

func (e *ArgError) Error() string {
	return e.Reason
}

// Hint returns remediation text shown alongside the error.
func (e *ArgError) Hint() string {
	return e.Advice
}

// storeError marks config store read/write failures so they map to the
// configuration exit code.
type storeError struct {
	err error
}

func (e *storeError) Error() string {
	return e.err.Error()
}

func (e *storeError) Unwrap() error {
	return e.err
}

// Hint returns remediation text shown alongside the error.
func (e *storeError) Hint() string {
	return "check the config file location with 'mbr config path' and its contents with 'mbr config validate'"
}

// hinter is implemented by errors that carry remediation text.
type hinter interface {
	Hint() string
}

// PrintError writes err to w the way the root command reports failures:
// the error on one line, its hint (when present) on the next.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var h hinter
	if errors.As(err, &h) {
		fmt.Fprintln(w, h.Hint())
	}
}

// ExitCode classifies err into the documented exit codes.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		missingField *config.MissingFieldError
		store        *storeError
		missingCred  *auth.MissingCredentialError
		unauthorized *auth.UnauthorizedError
		authTimeout  *auth.TimeoutError
		authRequired *auth.AuthRequiredError
		invalidReq   *query.InvalidRequestError
		unavailable  *query.ApiUnavailableError
		remoteStatus *api.StatusError
		unknownParam *query.UnknownParameterError
		missingParam *query.MissingParameterError
		argErr       *ArgError
		formatErr    *tabular.UnknownFormatError
	)

	switch {
	case errors.As(err, &missingField),
		errors.As(err, &store),
		errors.Is(err, config.ErrInvalidURL):
		return ExitConfig
	case errors.As(err, &missingCred),
		errors.As(err, &unauthorized),
		errors.As(err, &authTimeout),
		errors.As(err, &authRequired):
		return ExitAuth
	case errors.As(err, &unknownParam),
		errors.As(err, &missingParam),
		errors.As(err, &argErr),
		errors.As(err, &formatErr):
		return ExitValidation
	case errors.As(err, &invalidReq),
		errors.As(err, &unavailable),
		errors.As(err, &remoteStatus):
		return ExitAPI
	default:
		return ExitFailure
	}
}
