package carrier

import (
	"errors"
	"fmt"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var ErrDocumentIsNotConstructed = errors.New("Document must be created via NewDocument constructor")

type DocumentType string

const (
	DocLicense      DocumentType = "license"
	DocRegistration DocumentType = "registration"
	DocInsurance    DocumentType = "insurance"
	DocPermit       DocumentType = "permit"
	DocFitness      DocumentType = "fitness"
	DocPollution    DocumentType = "pollution_certificate"
)

// RequiredDocumentTypes is the set every carrier must hold to bid.
func RequiredDocumentTypes() []DocumentType {
	return []DocumentType{DocLicense, DocRegistration, DocInsurance, DocPermit, DocFitness, DocPollution}
}

func (t DocumentType) Validate() error {
	for _, known := range RequiredDocumentTypes() {
		if t == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("documentType", fmt.Errorf("%q is not a document type", string(t)))
}

// Document is compliance metadata about a carrier document. The file itself
// lives outside the engine.
type Document struct {
	id        kernel.UUID
	carrierID kernel.UUID
	docType   DocumentType
	verified  bool
	expiresAt *time.Time
	guard     guard.ConstructorGuard
}

func NewDocument(id, carrierID kernel.UUID, docType DocumentType, verified bool, expiresAt *time.Time) (*Document, error) {
	if err := errors.Join(id.Validate(), carrierID.Validate(), docType.Validate()); err != nil {
		return nil, err
	}
	return &Document{
		id:        id,
		carrierID: carrierID,
		docType:   docType,
		verified:  verified,
		expiresAt: expiresAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (d *Document) Validate() error {
	if d == nil {
		return ErrDocumentIsNotConstructed
	}
	return d.guard.Validate(ErrDocumentIsNotConstructed)
}

func (d *Document) ID() kernel.UUID        { return d.id }
func (d *Document) CarrierID() kernel.UUID { return d.carrierID }
func (d *Document) Type() DocumentType     { return d.docType }
func (d *Document) IsVerified() bool       { return d.verified }
func (d *Document) ExpiresAt() *time.Time  { return d.expiresAt }

// IsExpiredAt reports whether the document's expiry is at or before now.
// Documents without an expiry never expire.
func (d *Document) IsExpiredAt(now time.Time) bool {
	return d.expiresAt != nil && !d.expiresAt.After(now)
}
