package domain

import (
	"fmt"
	"strings"
)

// CascadeResult reports the outcome of one invitation created during a
// cascade. Error is empty on success.
// swagger:model CascadeResult
type CascadeResult struct {
	ProfileID string `json:"profile_id"`
	Invited   bool   `json:"invited"`
	Error     string `json:"error,omitempty"`
}

// CascadeError reports a partially completed band fan-out. Invitations
// already created are not rolled back; callers may retry only the failed
// profiles.
type CascadeError struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("invitation cascade incomplete: %d succeeded, failed for [%s]",
		len(e.Succeeded), strings.Join(e.Failed, ", "))
}
