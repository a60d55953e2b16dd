package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"docshield/internal/core/domain"
	"docshield/internal/core/ports"
)

// Thresholds are the perceptual distance bands. Distances below Match are
// "visually identical", above Reject "materially different"; the band in
// between defers to the exact digest and bound hash. Both are calibration
// parameters, injected from config.
type Thresholds struct {
	Match  float64
	Reject float64
}

// VerdictObserver receives verification telemetry. Nil-safe on the service.
type VerdictObserver interface {
	ObserveVerdict(verdict domain.Verdict, reason domain.ReasonCode)
	ObserveDecode(strategy string, success bool)
	ObserveLookup(d time.Duration)
}

// VerifyService fuses the decoder, fingerprinter, and registry signals into a
// GENUINE/FORGED/INCONCLUSIVE verdict. Requests are independent and
// stateless; the service holds no request-scoped mutable state.
type VerifyService struct {
	registry   ports.DocumentRegistry
	decoder    ports.PayloadDecoder
	fp         ports.Fingerprinter
	events     ports.EventPublisher
	observer   VerdictObserver
	logger     *slog.Logger
	thresholds Thresholds
}

func NewVerifyService(
	registry ports.DocumentRegistry,
	decoder ports.PayloadDecoder,
	fp ports.Fingerprinter,
	events ports.EventPublisher,
	observer VerdictObserver,
	logger *slog.Logger,
	thresholds Thresholds,
) *VerifyService {
	return &VerifyService{
		registry:   registry,
		decoder:    decoder,
		fp:         fp,
		events:     events,
		observer:   observer,
		logger:     logger,
		thresholds: thresholds,
	}
}

// VerifyByID is the manual entry path: doc id and claimed hash supplied
// out-of-band, no submitted content to compare.
func (s *VerifyService) VerifyByID(ctx context.Context, docID, claimedHash string) (*domain.VerificationResult, error) {
	if docID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "verify by id", errors.New("doc id is required"))
	}

	rec, result := s.lookup(ctx, docID)
	if result != nil {
		return s.finish(ctx, docID, result), nil
	}

	if claimedHash != rec.BoundHash {
		return s.finish(ctx, docID, forged(rec.DocID, domain.ReasonBoundHashMismatch)), nil
	}

	return s.finish(ctx, docID, genuine(rec.DocID, 1.0, domain.ReasonExactMatch)), nil
}

// VerifyByImage decodes the QR payload out of the submitted image and then
// additionally compares the submitted content against the stored record.
func (s *VerifyService) VerifyByImage(ctx context.Context, image []byte) (*domain.VerificationResult, error) {
	decoded, err := s.decoder.Decode(ctx, image)
	if err != nil {
		if s.observer != nil {
			s.observer.ObserveDecode("", false)
		}
		// Absence of a readable code is not proof of forgery.
		return s.finish(ctx, "", inconclusive("", 0, domain.ReasonNoQRDetected)), nil
	}
	if s.observer != nil {
		s.observer.ObserveDecode(decoded.Strategy, true)
	}

	payload, err := domain.ParseQRPayload(decoded.Payload)
	if err != nil {
		// A decodable code carrying garbage is just another unreadable code.
		return s.finish(ctx, "", inconclusive("", 0, domain.ReasonNoQRDetected)), nil
	}

	rec, result := s.lookup(ctx, payload.DocID)
	if result != nil {
		return s.finish(ctx, payload.DocID, result), nil
	}

	if payload.ClaimedHash != rec.BoundHash {
		return s.finish(ctx, rec.DocID, forged(rec.DocID, domain.ReasonBoundHashMismatch)), nil
	}

	if s.fp.ExactDigest(image) == rec.ContentDigest {
		return s.finish(ctx, rec.DocID, genuine(rec.DocID, 1.0, domain.ReasonExactMatch)), nil
	}

	return s.finish(ctx, rec.DocID, s.compareContent(rec, image)), nil
}

// compareContent classifies a digest mismatch using the perceptual bands.
func (s *VerifyService) compareContent(rec *domain.DocumentRecord, image []byte) *domain.VerificationResult {
	if rec.Fingerprint == "" {
		return inconclusive(rec.DocID, 0, domain.ReasonAmbiguousContent)
	}

	submitted, err := s.fp.Perceptual(image)
	if err != nil {
		return inconclusive(rec.DocID, 0, domain.ReasonAmbiguousContent)
	}
	distance, err := s.fp.Distance(rec.Fingerprint, submitted)
	if err != nil {
		return inconclusive(rec.DocID, 0, domain.ReasonAmbiguousContent)
	}

	featScore := 0.5
	if !rec.Features.IsZero() {
		if feats, ferr := s.fp.Features(image); ferr == nil {
			featScore = s.fp.FeatureSimilarity(rec.Features, feats)
		}
	}
	fused := 0.7*(1-distance) + 0.3*featScore

	switch {
	case distance < s.thresholds.Match:
		return genuine(rec.DocID, fused, domain.ReasonMinorRendering)
	case distance > s.thresholds.Reject:
		return forgedWithConfidence(rec.DocID, 1-fused, domain.ReasonContentAltered)
	default:
		return inconclusive(rec.DocID, fused, domain.ReasonAmbiguousContent)
	}
}

// lookup resolves a doc id. A non-nil result is terminal: unknown ids are a
// hard forgery signal, transient registry faults are inconclusive and never
// silently genuine.
func (s *VerifyService) lookup(ctx context.Context, docID string) (*domain.DocumentRecord, *domain.VerificationResult) {
	start := time.Now()
	rec, err := s.registry.Get(ctx, docID)
	if s.observer != nil {
		s.observer.ObserveLookup(time.Since(start))
	}
	if err == nil {
		return rec, nil
	}

	if domain.IsKind(err, domain.ErrRecordNotFound) {
		return nil, forged("", domain.ReasonUnknownDocumentID)
	}

	if s.logger != nil {
		s.logger.WarnContext(ctx, "registry lookup failed",
			"doc_id", docID,
			"error", err,
		)
	}
	return nil, inconclusive("", 0, domain.ReasonRegistryUnavailable)
}

func (s *VerifyService) finish(ctx context.Context, docID string, result *domain.VerificationResult) *domain.VerificationResult {
	if s.observer != nil && len(result.Reasons) > 0 {
		s.observer.ObserveVerdict(result.Verdict, result.Reasons[0])
	}
	if s.events != nil && docID != "" {
		if err := s.events.PublishVerification(ctx, docID, result.Verdict); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "verification event publish failed",
				"doc_id", docID,
				"error", err,
			)
		}
	}
	return result
}

func genuine(docID string, confidence float64, reason domain.ReasonCode) *domain.VerificationResult {
	return newResult(domain.VerdictGenuine, confidence, docID, reason)
}

func forged(docID string, reason domain.ReasonCode) *domain.VerificationResult {
	// Deterministic hash evidence carries full confidence.
	return newResult(domain.VerdictForged, 1.0, docID, reason)
}

func forgedWithConfidence(docID string, confidence float64, reason domain.ReasonCode) *domain.VerificationResult {
	return newResult(domain.VerdictForged, confidence, docID, reason)
}

func inconclusive(docID string, confidence float64, reason domain.ReasonCode) *domain.VerificationResult {
	return newResult(domain.VerdictInconclusive, confidence, docID, reason)
}

func newResult(verdict domain.Verdict, confidence float64, docID string, reasons ...domain.ReasonCode) *domain.VerificationResult {
	return &domain.VerificationResult{
		Verdict:         verdict,
		Confidence:      clamp01(confidence),
		Reasons:         reasons,
		MatchedRecordID: docID,
		EvaluatedAt:     time.Now().UTC(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
