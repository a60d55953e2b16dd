package ports

import (
	"context"

	"docshield/internal/core/domain"
)

// DocumentVerifier is the inbound contract for the verification engine.
// Every decode/lookup/compare outcome maps to a terminal VerificationResult;
// a non-nil error is returned only for malformed requests (empty doc id).
type DocumentVerifier interface {
	VerifyByID(ctx context.Context, docID, claimedHash string) (*domain.VerificationResult, error)
	VerifyByImage(ctx context.Context, image []byte) (*domain.VerificationResult, error)
}

// DocumentIssuer is the inbound contract for the issuance path.
type DocumentIssuer interface {
	Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssuedDocument, error)
}
