package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/session"
)

// Disposition is the terminal reviewer decision on a claim.
type Disposition string

const (
	DispositionApprove         Disposition = "approve"
	DispositionReject          Disposition = "reject"
	DispositionRequestMoreInfo Disposition = "request_more_info"
)

// ParseDisposition converts user input into a Disposition.
func ParseDisposition(value string) (Disposition, error) {
	d := Disposition(strings.ToLower(strings.TrimSpace(value)))
	switch d {
	case DispositionApprove, DispositionReject, DispositionRequestMoreInfo:
		return d, nil
	case "more_info":
		return DispositionRequestMoreInfo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDisposition, value)
}

// Notification is the transient message shown after a reviewer action.
type Notification struct {
	Title   string
	Message string
}

// Notice returns the notification text for a disposition.
func (d Disposition) Notice() Notification {
	switch d {
	case DispositionApprove:
		return Notification{Title: "Claim Approved", Message: "Claim has been approved successfully"}
	case DispositionReject:
		return Notification{Title: "Claim Rejected", Message: "Claim has been rejected"}
	default:
		return Notification{Title: "Info Requested", Message: "Request for more information has been sent"}
	}
}

// CorrectionNotice returns the notification text for a correction action.
func CorrectionNotice(action Action) Notification {
	verb := map[Action]string{
		ActionApprove: "approved",
		ActionReject:  "rejected",
		ActionEdit:    "reopened for editing",
	}[action]
	if verb == "" {
		verb = "updated"
	}
	return Notification{
		Title:   "Correction " + verb,
		Message: fmt.Sprintf("The suggested correction has been %s.", verb),
	}
}

// Decision records how a review session was closed.
type Decision struct {
	ClaimID      string
	Disposition  Disposition
	Reviewer     session.User
	DecidedAt    time.Time
	Notification Notification
	// PendingCorrections is how many corrections were left unresolved.
	PendingCorrections int
}

// Option customizes a review Session.
type Option func(*Session)

// WithClock overrides the time source used for decisions.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDecision restores a disposition recorded earlier for the same claim.
// The session starts finalized and rejects further changes.
func WithDecision(d Decision) Option {
	return func(s *Session) {
		if d.ClaimID == s.claim.ID {
			s.decision = &d
		}
	}
}

// Session holds the reviewer's working copy of one claim. Nothing here is
// written back to the repository.
type Session struct {
	claim       claims.Claim
	actor       session.Snapshot
	fields      []claims.ExtractedField
	corrections []claims.Correction
	decision    *Decision
	clock       func() time.Time
}

// NewSession starts reviewing claim on behalf of actor.
func NewSession(claim claims.Claim, actor session.Snapshot, opts ...Option) *Session {
	s := &Session{
		claim:       claim.Clone(),
		actor:       actor,
		fields:      append([]claims.ExtractedField(nil), claim.ExtractedFields...),
		corrections: append([]claims.Correction(nil), claim.Corrections...),
		clock:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Claim returns the claim as it was loaded.
func (s *Session) Claim() claims.Claim {
	return s.claim.Clone()
}

// Fields returns the working copy of extracted fields.
func (s *Session) Fields() []claims.ExtractedField {
	return append([]claims.ExtractedField(nil), s.fields...)
}

// Corrections returns the working copy of corrections.
func (s *Session) Corrections() []claims.Correction {
	return append([]claims.Correction(nil), s.corrections...)
}

// CanReview reports whether the actor may change fields and corrections.
func (s *Session) CanReview() bool {
	return s.actor.Can(session.CapReviewClaims)
}

// CanEditField reports whether the field at index is editable for the actor.
func (s *Session) CanEditField(index int) bool {
	return s.CanReview() && index >= 0 && index < len(s.fields) && s.fields[index].Editable
}

// Finalized reports whether a disposition was recorded.
func (s *Session) Finalized() bool {
	return s.decision != nil
}

// Decision returns the recorded disposition, if any.
func (s *Session) Decision() (Decision, bool) {
	if s.decision == nil {
		return Decision{}, false
	}
	return *s.decision, true
}

// PendingCorrections counts corrections still awaiting a reviewer.
func (s *Session) PendingCorrections() int {
	return CountPending(s.corrections)
}

// ApplyCorrection runs a reviewer action against a pending correction.
func (s *Session) ApplyCorrection(id string, action Action) (claims.Correction, error) {
	if err := s.guard(); err != nil {
		return claims.Correction{}, err
	}
	idx := correctionIndex(s.corrections, id)
	if idx < 0 {
		return claims.Correction{}, fmt.Errorf("%w: %s", ErrCorrectionNotFound, id)
	}
	if current := s.corrections[idx].Status; current != claims.CorrectionPending {
		return claims.Correction{}, fmt.Errorf("%w: %s is %s", ErrCorrectionClosed, id, current)
	}
	updated, err := ApplyCorrectionAction(s.corrections, id, action)
	if err != nil {
		return claims.Correction{}, err
	}
	s.corrections = updated
	return updated[idx], nil
}

// ReviseCorrection replaces the suggested value of a pending correction.
func (s *Session) ReviseCorrection(id, value string) (claims.Correction, error) {
	if err := s.guard(); err != nil {
		return claims.Correction{}, err
	}
	idx := correctionIndex(s.corrections, id)
	if idx < 0 {
		return claims.Correction{}, fmt.Errorf("%w: %s", ErrCorrectionNotFound, id)
	}
	if current := s.corrections[idx].Status; current != claims.CorrectionPending {
		return claims.Correction{}, fmt.Errorf("%w: %s is %s", ErrCorrectionClosed, id, current)
	}
	updated, err := ReviseCorrection(s.corrections, id, value)
	if err != nil {
		return claims.Correction{}, err
	}
	s.corrections = updated
	return updated[idx], nil
}

// EditField changes one extracted value.
func (s *Session) EditField(index int, value string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.fields) {
		return fmt.Errorf("%w: %d of %d", ErrFieldIndex, index, len(s.fields))
	}
	if !s.fields[index].Editable {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, s.fields[index].Field)
	}
	updated, err := EditField(s.fields, index, value)
	if err != nil {
		return err
	}
	s.fields = updated
	return nil
}

// Finalize closes the review with a disposition. It can only happen once.
func (s *Session) Finalize(d Disposition) (Decision, error) {
	if err := s.guard(); err != nil {
		return Decision{}, err
	}
	d, err := ParseDisposition(string(d))
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{
		ClaimID:            s.claim.ID,
		Disposition:        d,
		Reviewer:           s.actor.User,
		DecidedAt:          s.clock(),
		Notification:       d.Notice(),
		PendingCorrections: s.PendingCorrections(),
	}
	s.decision = &decision
	return decision, nil
}

func (s *Session) guard() error {
	if !s.CanReview() {
		return ErrForbidden
	}
	if s.decision != nil {
		return ErrAlreadyFinalized
	}
	return nil
}
