// Package query executes saved questions and browses the server catalog.
package query

import (
	"fmt"
	"strings"
)

// UnknownParameterError means a supplied parameter is not declared by
// the question.
type UnknownParameterError struct {
	Name     string
	Accepted []string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

// Hint returns guidance for resolving the error.
func (e *UnknownParameterError) Hint() string {
	if len(e.Accepted) == 0 {
		return "this question declares no parameters"
	}
	return "declared parameters: " + strings.Join(e.Accepted, ", ")
}

// MissingParameterError means a parameter the question requires was not
// supplied.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Name)
}

// Hint returns guidance for resolving the error.
func (e *MissingParameterError) Hint() string {
	return fmt.Sprintf("pass it with --param %s=VALUE", e.Name)
}

// InvalidRequestError means the server rejected the request as
// malformed or targeting something that does not exist.
type InvalidRequestError struct {
	Status  int
	Message string
}

func (e *InvalidRequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("the server rejected the request (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("the server rejected the request (status %d)", e.Status)
}

// Hint returns guidance for resolving the error.
func (e *InvalidRequestError) Hint() string {
	return "check that the ID and parameter values match what the server has"
}

// ApiUnavailableError means the server could not be reached or failed
// internally. The request was not retried.
type ApiUnavailableError struct {
	Err error
}

func (e *ApiUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the server is unavailable: %v", e.Err)
	}
	return "the server is unavailable"
}

func (e *ApiUnavailableError) Unwrap() error {
	return e.Err
}

// Hint returns guidance for resolving the error.
func (e *ApiUnavailableError) Hint() string {
	return "the request was not retried; try again once the server is reachable"
}
