package secretai

import (
	"errors"
	"fmt"
)

const errPrefix = "Secret AI SDK Error: "

// Error kinds. Every error returned by this package matches one of them
// under errors.Is.
var (
	ErrMissingCredential  = errors.New(errPrefix + "Missing API Key. Environment variable " + EnvAPIKey + " must be set")
	ErrMissingConfigValue = errors.New(errPrefix + "missing required value")
	ErrInvalidMnemonic    = errors.New(errPrefix + "Invalid mnemonic provided")
	ErrQueryFailure       = errors.New(errPrefix + "query failed")
	ErrInvalidInput       = errors.New(errPrefix + "Invalid value")
	ErrNotImplemented     = errors.New(errPrefix + "Not implemented")
)

// MissingValueError reports a setting that was resolvable from neither an
// explicit value, its environment variable, nor a default.
type MissingValueError struct {
	Var string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("%sMissing environment variable %s must be set", errPrefix, e.Var)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingConfigValue
}

// QueryError wraps a failed smart contract query.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%sFailed to query %s: %v", errPrefix, e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailure
}
