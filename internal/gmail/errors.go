package gmail

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// RemoteError reports that the Gmail API rejected or failed a call. The
// provider's HTTP status and message are preserved; remote failures are
// never retried.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gmail %s failed: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gmail %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the provider returned 404 for this call.
func (e *RemoteError) IsNotFound() bool {
	return e.StatusCode == 404
}

// wrapRemote converts a Gmail API error into a *RemoteError, extracting the
// provider status and message from googleapi.Error when present.
func wrapRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &RemoteError{Op: op, StatusCode: gerr.Code, Message: gerr.Message, Err: err}
	}
	return &RemoteError{Op: op, Err: err}
}

// IsRemoteNotFound reports whether err is a RemoteError with a 404 status.
func IsRemoteNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.IsNotFound()
}
