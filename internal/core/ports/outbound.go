package ports

import (
	"context"
	"io"

	"docshield/internal/core/domain"
)

// DocumentRegistry is the external store of issued records, keyed by doc id.
// Get returns domain.ErrRecordNotFound for unknown ids and
// domain.ErrRegistryUnavailable for transient infrastructure faults.
type DocumentRegistry interface {
	Get(ctx context.Context, docID string) (*domain.DocumentRecord, error)
	Put(ctx context.Context, rec *domain.DocumentRecord) error
}

// PayloadDecoder extracts exactly one QR payload string from raster image
// bytes. Returns domain.ErrNoQRDetected once every strategy is exhausted.
type PayloadDecoder interface {
	Decode(ctx context.Context, image []byte) (domain.QRDecodeResult, error)
}

// Fingerprinter computes the exact and perceptual content signals.
type Fingerprinter interface {
	ExactDigest(data []byte) string
	Perceptual(image []byte) (string, error)
	Features(image []byte) (domain.StatFeatures, error)
	// Distance is the Hamming distance between two fingerprints, normalized
	// to [0,1].
	Distance(fp1, fp2 string) (float64, error)
	FeatureSimilarity(stored, submitted domain.StatFeatures) float64
}

// QRRenderer renders a payload string as a QR code PNG at issuance.
type QRRenderer interface {
	Render(payload string, sizePx int) ([]byte, error)
}

// ObjectStorage stores issued QR stamps and document assets.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor pulls plain text out of an uploaded document where the
// format allows it (PDF, UTF-8 text). An empty string is a valid result.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// EventPublisher emits audit events. Publishing is best-effort: a failed
// publish never changes an issuance or verification outcome.
type EventPublisher interface {
	PublishDocumentIssued(ctx context.Context, docID string) error
	PublishVerification(ctx context.Context, docID string, verdict domain.Verdict) error
}
