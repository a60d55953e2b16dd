package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docshield/internal/core/domain"
	"docshield/internal/core/ports"
)

const qrSizePx = 300

// IssueService creates registry records and their QR stamps. Issuance is the
// only writer of DocumentRecords; the bound hash is computed exactly once
// here and never recomputed for a stored record.
type IssueService struct {
	registry  ports.DocumentRegistry
	fp        ports.Fingerprinter
	renderer  ports.QRRenderer
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	events    ports.EventPublisher
	logger    *slog.Logger
	baseURL   string
}

func NewIssueService(
	registry ports.DocumentRegistry,
	fp ports.Fingerprinter,
	renderer ports.QRRenderer,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	events ports.EventPublisher,
	logger *slog.Logger,
	baseURL string,
) *IssueService {
	return &IssueService{
		registry:  registry,
		fp:        fp,
		renderer:  renderer,
		storage:   storage,
		extractor: extractor,
		events:    events,
		logger:    logger,
		baseURL:   baseURL,
	}
}

func (s *IssueService) Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssuedDocument, error) {
	if err := validateIssueRequest(req); err != nil {
		return nil, err
	}

	docID := strings.TrimSpace(req.DocID)
	if docID == "" {
		docID = uuid.NewString()
	}

	rec := &domain.DocumentRecord{
		DocID:         docID,
		HolderName:    strings.TrimSpace(req.HolderName),
		DocType:       strings.TrimSpace(req.DocType),
		IssueDate:     strings.TrimSpace(req.IssueDate),
		ExpiryDate:    strings.TrimSpace(req.ExpiryDate),
		Notes:         strings.TrimSpace(req.Notes),
		ContentDigest: s.fp.ExactDigest(req.Content),
		IssuedAt:      time.Now().UTC(),
	}

	// Raster content also gets the similarity signals; other formats verify
	// by digest and bound hash alone.
	if fingerprint, err := s.fp.Perceptual(req.Content); err == nil {
		rec.Fingerprint = fingerprint
		if feats, ferr := s.fp.Features(req.Content); ferr == nil {
			rec.Features = feats
		}
	} else if text, terr := s.extractor.ExtractText(req.Filename, req.Content); terr == nil && text != "" {
		rec.Notes = appendTextNote(rec.Notes, text)
	}

	rec.BoundHash = domain.BoundHash(rec.DocID, rec.HolderName, rec.DocType, rec.IssueDate, rec.ContentDigest)
	rec.VerifyURL = domain.BuildVerifyURL(s.baseURL, rec.DocID, rec.BoundHash)

	png, err := s.renderer.Render(rec.VerifyURL, qrSizePx)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}

	qrPath := "qr/" + rec.DocID + ".png"
	if err := s.storage.Save(ctx, qrPath, bytes.NewReader(png)); err != nil {
		return nil, fmt.Errorf("store qr stamp: %w", err)
	}

	// The record must be durable before the QR code referencing it is handed
	// out.
	if err := s.registry.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishDocumentIssued(ctx, rec.DocID); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "issuance event publish failed",
				"doc_id", rec.DocID,
				"error", err,
			)
		}
	}

	return &domain.IssuedDocument{Record: rec, QRPath: qrPath}, nil
}

func validateIssueRequest(req domain.IssueRequest) error {
	switch {
	case len(req.Content) == 0:
		return domain.WrapError(domain.ErrInvalidInput, "issue document", errors.New("document content is required"))
	case strings.TrimSpace(req.HolderName) == "":
		return domain.WrapError(domain.ErrInvalidInput, "issue document", errors.New("holder name is required"))
	case strings.TrimSpace(req.DocType) == "":
		return domain.WrapError(domain.ErrInvalidInput, "issue document", errors.New("doc type is required"))
	case strings.TrimSpace(req.IssueDate) == "":
		return domain.WrapError(domain.ErrInvalidInput, "issue document", errors.New("issue date is required"))
	}
	return nil
}

func appendTextNote(notes, text string) string {
	const maxTextNote = 512
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxTextNote {
		text = text[:maxTextNote]
	}
	if notes == "" {
		return text
	}
	return notes + "\n" + text
}
