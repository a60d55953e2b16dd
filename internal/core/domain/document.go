package domain

import "time"

// DocumentRecord is the registry entry created once at issuance. The core
// reads it during verification and never mutates it.
type DocumentRecord struct {
	DocID      string `json:"doc_id"`
	HolderName string `json:"holder_name"`
	DocType    string `json:"doc_type"`
	IssueDate  string `json:"issue_date"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	Notes      string `json:"notes,omitempty"`

	ContentDigest string       `json:"content_digest"`
	Fingerprint   string       `json:"fingerprint,omitempty"`
	Features      StatFeatures `json:"features,omitempty"`

	BoundHash string    `json:"bound_hash"`
	VerifyURL string    `json:"verify_url,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// StatFeatures are coarse image statistics captured at issuance. They act as
// a secondary similarity signal next to the perceptual fingerprint.
type StatFeatures struct {
	MeanIntensity float64 `json:"mean_intensity,omitempty"`
	StdIntensity  float64 `json:"std_intensity,omitempty"`
	AspectRatio   float64 `json:"aspect_ratio,omitempty"`
}

func (f StatFeatures) IsZero() bool {
	return f.MeanIntensity == 0 && f.StdIntensity == 0 && f.AspectRatio == 0
}

// IssueRequest carries the inputs for issuing a new document.
type IssueRequest struct {
	DocID      string
	HolderName string
	DocType    string
	IssueDate  string
	ExpiryDate string
	Notes      string
	Filename   string
	Content    []byte
}

// IssuedDocument is returned after a successful issuance.
type IssuedDocument struct {
	Record *DocumentRecord `json:"record"`
	QRPath string          `json:"qr_path"`
}
