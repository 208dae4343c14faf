package models

import "fmt"

// DataError reports a message that violates the provider's own data contract,
// such as a listing entry without an identifier. It aborts the current pass;
// the provider is trusted to always supply identifiers, so there is no
// per-message recovery.
type DataError struct {
	MessageID string
	Reason    string
}

func (e *DataError) Error() string {
	if e.MessageID != "" {
		return fmt.Sprintf("bad message %s: %s", e.MessageID, e.Reason)
	}
	return "bad message: " + e.Reason
}
