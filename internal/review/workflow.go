// internal/review/workflow.go
//
// Pure list operations behind the review screen. They never modify their
// input and return a fresh slice instead.

package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/claimdesk/internal/claims"
)

var (
	// ErrCorrectionNotFound is returned when an action targets an unknown correction id.
	ErrCorrectionNotFound = errors.New("review: correction not found")
	// ErrCorrectionClosed is returned when a correction already left the pending state.
	ErrCorrectionClosed = errors.New("review: correction already resolved")
	// ErrUnknownAction is returned for actions outside approve/reject/edit.
	ErrUnknownAction = errors.New("review: unknown correction action")
	// ErrFieldIndex is returned when a field index is out of range.
	ErrFieldIndex = errors.New("review: field index out of range")
	// ErrFieldNotEditable is returned when a reviewer edits a locked field.
	ErrFieldNotEditable = errors.New("review: field is not editable")
	// ErrForbidden is returned when the actor lacks the review capability.
	ErrForbidden = errors.New("review: reviewer role required")
	// ErrAlreadyFinalized is returned for any change after the final disposition.
	ErrAlreadyFinalized = errors.New("review: claim already finalized")
	// ErrUnknownDisposition is returned for dispositions outside approve/reject/request_more_info.
	ErrUnknownDisposition = errors.New("review: unknown disposition")
)

// Action is a reviewer decision on one suggested correction.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
)

// ParseAction converts user input into an Action.
func ParseAction(value string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(value)))
	if _, err := a.Outcome(); err != nil {
		return "", err
	}
	return a, nil
}

// Outcome maps the action to the correction status it produces. Edit puts
// the correction back to pending so it can be changed further.
func (a Action) Outcome() (claims.CorrectionStatus, error) {
	switch a {
	case ActionApprove:
		return claims.CorrectionApproved, nil
	case ActionReject:
		return claims.CorrectionRejected, nil
	case ActionEdit:
		return claims.CorrectionPending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, string(a))
	}
}

// ApplyCorrectionAction replaces the status of the correction with id and
// leaves every other entry untouched.
func ApplyCorrectionAction(list []claims.Correction, id string, action Action) ([]claims.Correction, error) {
	status, err := action.Outcome()
	if err != nil {
		return nil, err
	}
	idx := correctionIndex(list, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorrectionNotFound, id)
	}
	out := append([]claims.Correction(nil), list...)
	out[idx].Status = status
	return out, nil
}

// ReviseCorrection stores a reviewer-supplied value in place of the CAG
// suggestion and marks the correction edited.
func ReviseCorrection(list []claims.Correction, id, value string) ([]claims.Correction, error) {
	idx := correctionIndex(list, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCorrectionNotFound, id)
	}
	out := append([]claims.Correction(nil), list...)
	out[idx].SuggestedValue = value
	out[idx].Status = claims.CorrectionEdited
	return out, nil
}

// EditField replaces the value at index, keeping confidence and editability.
func EditField(fields []claims.ExtractedField, index int, value string) ([]claims.ExtractedField, error) {
	if index < 0 || index >= len(fields) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFieldIndex, index, len(fields))
	}
	out := append([]claims.ExtractedField(nil), fields...)
	out[index].Value = value
	return out, nil
}

// CountPending returns how many corrections still await a reviewer.
func CountPending(list []claims.Correction) int {
	n := 0
	for _, c := range list {
		if c.Status == claims.CorrectionPending {
			n++
		}
	}
	return n
}

func correctionIndex(list []claims.Correction, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
