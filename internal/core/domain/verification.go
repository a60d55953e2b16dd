package domain

import "time"

type Verdict string

const (
	VerdictGenuine      Verdict = "GENUINE"
	VerdictForged       Verdict = "FORGED"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
)

type ReasonCode string

const (
	ReasonExactMatch         ReasonCode = "EXACT_MATCH"
	ReasonMinorRendering     ReasonCode = "MINOR_RENDERING_DIFFERENCE"
	ReasonContentAltered     ReasonCode = "CONTENT_ALTERED"
	ReasonAmbiguousContent   ReasonCode = "AMBIGUOUS_CONTENT_MATCH"
	ReasonBoundHashMismatch  ReasonCode = "BOUND_HASH_MISMATCH"
	ReasonUnknownDocumentID  ReasonCode = "UNKNOWN_DOCUMENT_ID"
	ReasonNoQRDetected       ReasonCode = "NO_QR_DETECTED"
	ReasonRegistryUnavailable ReasonCode = "REGISTRY_UNAVAILABLE"
)

// VerificationResult is the terminal outcome of one verification request.
// It is returned to the caller and never persisted by the core.
type VerificationResult struct {
	Verdict         Verdict      `json:"verdict"`
	Confidence      float64      `json:"confidence"`
	Reasons         []ReasonCode `json:"reason_codes"`
	MatchedRecordID string       `json:"matched_record_id,omitempty"`
	EvaluatedAt     time.Time    `json:"evaluated_at"`
}

// QRDecodeResult reports the payload and the preprocessing strategy that
// produced the first successful decode.
type QRDecodeResult struct {
	Payload  string
	Strategy string
	Tier     int
}
