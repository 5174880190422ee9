// internal/upload/form.go
//
// Claim document submission: field validation and the receipt issued once
// the simulated upload completes.

package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/claimdesk/internal/claims"
)

const dateLayout = "2006-01-02"

var pdfMagic = []byte("%PDF-")

var (
	// ErrInvalidFileType is returned when the document is not a PDF.
	ErrInvalidFileType = errors.New("upload: document must be a PDF")
	// ErrInvalidDate is returned when the incident date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("upload: incident date must be YYYY-MM-DD")
	// ErrInvalidClaimType is returned for claim types outside the known set.
	ErrInvalidClaimType = errors.New("upload: unknown claim type")
)

// MissingFieldsError lists the required fields left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "upload: please fill in all required fields: " + strings.Join(e.Fields, ", ")
}

// Form is the data a customer enters to submit a claim.
type Form struct {
	DocumentPath string
	PolicyNumber string
	IncidentDate string
	ClaimType    string
	Description  string
}

// Missing returns the labels of required fields that are blank, in form order.
func (f Form) Missing() []string {
	var missing []string
	if strings.TrimSpace(f.DocumentPath) == "" {
		missing = append(missing, "Document")
	}
	if strings.TrimSpace(f.PolicyNumber) == "" {
		missing = append(missing, "Policy Number")
	}
	if strings.TrimSpace(f.IncidentDate) == "" {
		missing = append(missing, "Incident Date")
	}
	if strings.TrimSpace(f.ClaimType) == "" {
		missing = append(missing, "Claim Type")
	}
	return missing
}

// Validate checks presence first, then the document type, then the values.
func (f Form) Validate() error {
	if missing := f.Missing(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	if err := checkPDF(strings.TrimSpace(f.DocumentPath)); err != nil {
		return err
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(f.IncidentDate)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, f.IncidentDate)
	}
	if _, err := claims.ParseClaimType(f.ClaimType); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidClaimType, f.ClaimType)
	}
	return nil
}

func checkPDF(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s", ErrInvalidFileType, filepath.Base(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload: open document: %w", err)
	}
	defer file.Close()
	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, header); err != nil || !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("%w: %s has no PDF header", ErrInvalidFileType, filepath.Base(path))
	}
	return nil
}

// Receipt acknowledges a completed upload.
type Receipt struct {
	Reference    string           `json:"reference"`
	Document     string           `json:"document"`
	PolicyNumber string           `json:"policyNumber"`
	ClaimType    claims.ClaimType `json:"claimType"`
	SubmittedAt  time.Time        `json:"submittedAt"`
}

// NewReceipt issues a receipt for a validated form.
func NewReceipt(f Form, now time.Time) Receipt {
	claimType, _ := claims.ParseClaimType(f.ClaimType)
	return Receipt{
		Reference:    uuid.NewString(),
		Document:     filepath.Base(strings.TrimSpace(f.DocumentPath)),
		PolicyNumber: strings.TrimSpace(f.PolicyNumber),
		ClaimType:    claimType,
		SubmittedAt:  now,
	}
}
