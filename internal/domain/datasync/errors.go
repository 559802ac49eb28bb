package datasync

import (
	"errors"
	"fmt"
	"strings"
)

// GenericTransferMessage is shown when the server gave no usable message.
const GenericTransferMessage = "could not communicate with the server"

var ErrSyncInProgress = errors.New("a synchronization is already running")

// ConnectivityError fails a flow before any record is read.
type ConnectivityError struct {
	Reason string
	Err    error
}

func (e *ConnectivityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no connectivity: %s: %v", e.Reason, e.Err)
	}
	return "no connectivity: " + e.Reason
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func (e *ConnectivityError) UserMessage() string {
	return "No internet connection: " + e.Reason
}

// TransferError is one failed request. During a push it is isolated to the
// record being sent.
type TransferError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransferError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote transfer failed with status %d: %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote transfer failed: %s: %v", e.Message, e.Err)
	}
	return "remote transfer failed: " + e.Message
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) UserMessage() string {
	if strings.TrimSpace(e.Message) == "" {
		return GenericTransferMessage
	}
	return e.Message
}

// UpdateRequiredError means the server rejected this client version. It is
// handed to the update prompt and never folded into a push summary.
type UpdateRequiredError struct {
	Description string
	URL         string
	VersionName string
}

func (e *UpdateRequiredError) Error() string {
	if e.VersionName != "" {
		return "client version rejected by server: version " + e.VersionName + " is required"
	}
	return "client version rejected by server"
}

func (e *UpdateRequiredError) UserMessage() string {
	if strings.TrimSpace(e.Description) != "" {
		return e.Description
	}
	return "A new version of the app is required to synchronize."
}

// StoreError marks a local read or write failure; the containing flow stops.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("local store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) UserMessage() string {
	return "Local data could not be read or written (" + e.Op + ")."
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StoreError
	if errors.As(err, &existing) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsFatalToBatch reports whether a per-record error must stop a push.
func IsFatalToBatch(err error) bool {
	var update *UpdateRequiredError
	if errors.As(err, &update) {
		return true
	}
	var store *StoreError
	return errors.As(err, &store)
}
