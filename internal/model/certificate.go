package model

import "time"

// CertificateType distinguishes admin-issued annual certificates from
// donor self-generated ones. The two categories carry different rules:
// annual certificates are tenure-gated and record the issuing admin;
// self-generated certificates are ungated and have no issuer.
type CertificateType string

const (
	CertificateAnnual        CertificateType = "annual"
	CertificateSelfGenerated CertificateType = "self-generated"
)

// Valid reports whether t is one of the two known certificate types.
func (t CertificateType) Valid() bool {
	return t == CertificateAnnual || t == CertificateSelfGenerated
}

// Certificate is an appreciation certificate issued to a donor.
//
// Rows are append-only: created exclusively by the certificate service,
// never updated or deleted. DonorName is snapshotted from the profile at
// issue time so later profile edits don't rewrite history. IssuedBy is
// empty for self-generated certificates.
type Certificate struct {
	ID        string          `json:"id"`
	DonorID   string          `json:"donorId"`
	DonorName string          `json:"donorName"`
	IssuedBy  string          `json:"issuedBy,omitempty"`
	Type      CertificateType `json:"certificateType"`
	IssuedAt  time.Time       `json:"issuedAt"`
}
