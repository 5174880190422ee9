// internal/claims/types.go
//
// Claim data model shared by the dashboards, the review workflow and the API.
// Field names on the wire match what the web client consumed (camelCase).

package claims

import (
	"fmt"
	"strings"
	"time"
)

// ClaimType enumerates the kinds of incidents a claim can describe.
type ClaimType string

const (
	TypeCollision ClaimType = "collision"
	TypeTheft     ClaimType = "theft"
	TypeFire      ClaimType = "fire"
	TypeFlood     ClaimType = "flood"
	TypeLiability ClaimType = "liability"
	TypeOther     ClaimType = "other"
)

// ClaimTypes lists every claim type in display order.
var ClaimTypes = []ClaimType{TypeCollision, TypeTheft, TypeFire, TypeFlood, TypeLiability, TypeOther}

// Valid reports whether t is a known claim type.
func (t ClaimType) Valid() bool {
	for _, known := range ClaimTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the capitalized display label.
func (t ClaimType) Label() string {
	return titleCase(string(t))
}

// ParseClaimType converts user input into a ClaimType.
func ParseClaimType(value string) (ClaimType, error) {
	t := ClaimType(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", fmt.Errorf("claims: unknown claim type %q", value)
	}
	return t, nil
}

// Status is the lifecycle status of a claim. It is authored independently of
// the confidence score.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusHITLReview Status = "hitl_review"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusPending    Status = "pending"
)

// Statuses lists every claim status.
var Statuses = []Status{StatusProcessing, StatusHITLReview, StatusApproved, StatusRejected, StatusPending}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the badge label for the status.
func (s Status) Label() string {
	switch s {
	case StatusHITLReview:
		return "HITL Review"
	default:
		return titleCase(string(s))
	}
}

// AwaitingReview reports whether a reviewer still has work on the claim.
func (s Status) AwaitingReview() bool {
	return s == StatusHITLReview || s == StatusProcessing
}

// Resolved reports whether the claim reached a terminal decision.
func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("claims: unknown status %q", value)
	}
	return s, nil
}

// Agent identifies the pipeline stage that emitted a message.
type Agent string

const (
	AgentClaims     Agent = "claims"
	AgentVerifier   Agent = "verifier"
	AgentCAG        Agent = "cag"
	AgentSupervisor Agent = "supervisor"
)

// Agents lists pipeline stages in processing order.
var Agents = []Agent{AgentClaims, AgentVerifier, AgentCAG, AgentSupervisor}

// Valid reports whether a is one of the four fixed stages.
func (a Agent) Valid() bool {
	for _, known := range Agents {
		if a == known {
			return true
		}
	}
	return false
}

// Label returns the display name of the stage.
func (a Agent) Label() string {
	switch a {
	case AgentCAG:
		return "CAG Agent"
	default:
		return titleCase(string(a)) + " Agent"
	}
}

// MessageType is the severity of an agent message.
type MessageType string

const (
	MessageInfo    MessageType = "info"
	MessageWarning MessageType = "warning"
	MessageError   MessageType = "error"
	MessageSuccess MessageType = "success"
)

// Valid reports whether m is a known severity.
func (m MessageType) Valid() bool {
	switch m {
	case MessageInfo, MessageWarning, MessageError, MessageSuccess:
		return true
	}
	return false
}

// CorrectionStatus tracks reviewer handling of a suggested correction.
type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
	CorrectionEdited   CorrectionStatus = "edited"
)

// Valid reports whether c is a known correction status.
func (c CorrectionStatus) Valid() bool {
	switch c {
	case CorrectionPending, CorrectionApproved, CorrectionRejected, CorrectionEdited:
		return true
	}
	return false
}

// ExtractedField is a value read from the claim document with its confidence.
type ExtractedField struct {
	Field      string `json:"field" yaml:"field"`
	Value      string `json:"value" yaml:"value"`
	Confidence int    `json:"confidence" yaml:"confidence"`
	Editable   bool   `json:"editable,omitempty" yaml:"editable,omitempty"`
}

// AgentMessage is one entry of the processing conversation.
type AgentMessage struct {
	ID        string      `json:"id" yaml:"id"`
	Agent     Agent       `json:"agent" yaml:"agent"`
	Message   string      `json:"message" yaml:"message"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
	Type      MessageType `json:"type" yaml:"type"`
}

// Correction is a fix proposed by the CAG stage for one extracted field.
type Correction struct {
	ID             string           `json:"id" yaml:"id"`
	Field          string           `json:"field" yaml:"field"`
	Issue          string           `json:"issue" yaml:"issue"`
	SuggestedValue string           `json:"suggestedValue" yaml:"suggestedValue"`
	OriginalValue  string           `json:"originalValue" yaml:"originalValue"`
	Status         CorrectionStatus `json:"status" yaml:"status"`
}

// Claim is a single insurance claim as produced by the processing pipeline.
type Claim struct {
	ID               string           `json:"id" yaml:"id"`
	PolicyNumber     string           `json:"policyNumber" yaml:"policyNumber"`
	IncidentDate     string           `json:"incidentDate" yaml:"incidentDate"`
	ClaimType        ClaimType        `json:"claimType" yaml:"claimType"`
	Status           Status           `json:"status" yaml:"status"`
	Confidence       int              `json:"confidence" yaml:"confidence"`
	FlagsCount       int              `json:"flagsCount" yaml:"flagsCount"`
	CreatedAt        time.Time        `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt" yaml:"updatedAt"`
	ClaimAmount      *float64         `json:"claimAmount,omitempty" yaml:"claimAmount,omitempty"`
	Description      string           `json:"description,omitempty" yaml:"description,omitempty"`
	ExtractedFields  []ExtractedField `json:"extractedFields,omitempty" yaml:"extractedFields,omitempty"`
	AgentMessages    []AgentMessage   `json:"agentMessages,omitempty" yaml:"agentMessages,omitempty"`
	Corrections      []Correction     `json:"cagCorrections,omitempty" yaml:"cagCorrections,omitempty"`
	AssignedAdjuster string           `json:"assignedAdjuster,omitempty" yaml:"assignedAdjuster,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the fixture.
func (c Claim) Clone() Claim {
	out := c
	if c.ClaimAmount != nil {
		amount := *c.ClaimAmount
		out.ClaimAmount = &amount
	}
	out.ExtractedFields = append([]ExtractedField(nil), c.ExtractedFields...)
	out.AgentMessages = append([]AgentMessage(nil), c.AgentMessages...)
	out.Corrections = append([]Correction(nil), c.Corrections...)
	return out
}

// MessagesByAgent groups the conversation by pipeline stage, preserving order.
func (c Claim) MessagesByAgent() map[Agent][]AgentMessage {
	grouped := make(map[Agent][]AgentMessage, len(Agents))
	for _, msg := range c.AgentMessages {
		grouped[msg.Agent] = append(grouped[msg.Agent], msg)
	}
	return grouped
}

// Validate checks enum membership and numeric ranges.
func (c Claim) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if !c.ClaimType.Valid() {
		return fmt.Errorf("claim %s: unknown claim type %q", c.ID, c.ClaimType)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("claim %s: unknown status %q", c.ID, c.Status)
	}
	if c.Confidence < 0 || c.Confidence > 100 {
		return fmt.Errorf("claim %s: confidence %d outside [0,100]", c.ID, c.Confidence)
	}
	if c.FlagsCount < 0 {
		return fmt.Errorf("claim %s: negative flag count", c.ID)
	}
	for i, field := range c.ExtractedFields {
		if field.Confidence < 0 || field.Confidence > 100 {
			return fmt.Errorf("claim %s: extractedFields[%d] confidence %d outside [0,100]", c.ID, i, field.Confidence)
		}
	}
	for i, msg := range c.AgentMessages {
		if !msg.Agent.Valid() {
			return fmt.Errorf("claim %s: agentMessages[%d] unknown agent %q", c.ID, i, msg.Agent)
		}
		if !msg.Type.Valid() {
			return fmt.Errorf("claim %s: agentMessages[%d] unknown type %q", c.ID, i, msg.Type)
		}
	}
	seen := map[string]struct{}{}
	for i, corr := range c.Corrections {
		if !corr.Status.Valid() {
			return fmt.Errorf("claim %s: cagCorrections[%d] unknown status %q", c.ID, i, corr.Status)
		}
		if _, dup := seen[corr.ID]; dup {
			return fmt.Errorf("claim %s: duplicate correction id %q", c.ID, corr.ID)
		}
		seen[corr.ID] = struct{}{}
	}
	return nil
}

func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
