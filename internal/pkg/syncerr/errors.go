// Package syncerr defines the failure taxonomy shared by the token manager,
// the reconciliation primitive and both synchronizers.
package syncerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingArgument        = errors.New("missing required argument")
	ErrCredentialNotFound     = errors.New("credential not found")
	ErrTokenUnavailable       = errors.New("token unavailable")
	ErrRemoteCalendarNotFound = errors.New("remote calendar not found")
	ErrCalendarPersistFailed  = errors.New("calendar persist failed")
	ErrRemoteFetchFailed      = errors.New("remote fetch failed")
	ErrPersistFailed          = errors.New("persist failed")
)

// RecordError describes a single record that was skipped during a batch.
// It matches ErrPersistFailed as well as the underlying cause.
type RecordError struct {
	Entity string
	Key    string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Entity, e.Key, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrPersistFailed, e.Err}
}

func (e *RecordError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(map[string]string{
		"entity": e.Entity,
		"key":    e.Key,
		"error":  msg,
	})
}

// Code returns the taxonomy name for err, or "Internal" when err does not
// belong to the taxonomy.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArgument):
		return "MissingArgument"
	case errors.Is(err, ErrTokenUnavailable):
		return "TokenUnavailable"
	case errors.Is(err, ErrCredentialNotFound):
		return "CredentialNotFound"
	case errors.Is(err, ErrRemoteCalendarNotFound):
		return "RemoteCalendarNotFound"
	case errors.Is(err, ErrCalendarPersistFailed):
		return "CalendarPersistFailed"
	case errors.Is(err, ErrRemoteFetchFailed):
		return "RemoteFetchFailed"
	case errors.Is(err, ErrPersistFailed):
		return "PersistFailed"
	default:
		return "Internal"
	}
}
