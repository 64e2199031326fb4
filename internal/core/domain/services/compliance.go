package services

import (
	"fmt"
	"strings"
	"time"

	"freight/internal/core/domain/model/carrier"
)

// ComplianceResult reports a carrier's document standing. Expired and Missing
// list document types, not document ids.
type ComplianceResult struct {
	Compliant bool                   `json:"compliant"`
	Reason    string                 `json:"reason,omitempty"`
	Expired   []carrier.DocumentType `json:"expiredDocuments"`
	Missing   []carrier.DocumentType `json:"missingDocuments"`
}

// ComplianceChecker evaluates a carrier's documents against the required set.
//
// Per type only verified documents count. A type is satisfied by any verified
// document that has not expired. When every verified document of a type has
// expired the type is expired, which always blocks. A type with no verified
// document is missing, which blocks only when missingBlocks is set.
type ComplianceChecker struct {
	missingBlocks bool
}

func NewComplianceChecker(missingBlocks bool) ComplianceChecker {
	return ComplianceChecker{missingBlocks: missingBlocks}
}

func (c ComplianceChecker) Check(documents []*carrier.Document, now time.Time) ComplianceResult {
	res := ComplianceResult{
		Expired: []carrier.DocumentType{},
		Missing: []carrier.DocumentType{},
	}

	for _, required := range carrier.RequiredDocumentTypes() {
		var verified, valid int
		for _, d := range documents {
			if d.Type() != required || !d.IsVerified() {
				continue
			}
			verified++
			if !d.IsExpiredAt(now) {
				valid++
			}
		}

		switch {
		case valid > 0:
		case verified > 0:
			res.Expired = append(res.Expired, required)
		default:
			res.Missing = append(res.Missing, required)
		}
	}

	var reasons []string
	if len(res.Expired) > 0 {
		reasons = append(reasons, "expired: "+joinTypes(res.Expired))
	}
	if len(res.Missing) > 0 && c.missingBlocks {
		reasons = append(reasons, "missing: "+joinTypes(res.Missing))
	}

	res.Compliant = len(reasons) == 0
	if !res.Compliant {
		res.Reason = strings.Join(reasons, "; ")
	} else if len(res.Missing) > 0 {
		res.Reason = fmt.Sprintf("advisory, missing: %s", joinTypes(res.Missing))
	}
	return res
}

func joinTypes(types []carrier.DocumentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
