package domain

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// QRPayload is the (doc_id, claimed hash) pair recovered from a scanned code.
type QRPayload struct {
	DocID       string
	ClaimedHash string
}

// BuildVerifyURL renders the QR payload in its URL form. Phones open it as a
// link; the verifier reads doc id and hash back out of the query parameters.
func BuildVerifyURL(base, docID, boundHash string) string {
	q := url.Values{}
	q.Set("verify", docID)
	q.Set("hash", boundHash)
	return strings.TrimRight(base, "/") + "/?" + q.Encode()
}

// ParseQRPayload accepts the URL form produced at issuance and the legacy
// JSON form {"doc_id":...,"hash":...} written by earlier issuers.
func ParseQRPayload(raw string) (QRPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return QRPayload{}, WrapError(ErrInvalidInput, "parse qr payload", errors.New("empty payload"))
	}

	if u, err := url.Parse(raw); err == nil {
		q := u.Query()
		if id := strings.TrimSpace(q.Get("verify")); id != "" {
			return QRPayload{
				DocID:       id,
				ClaimedHash: strings.TrimSpace(q.Get("hash")),
			}, nil
		}
	}

	var legacy struct {
		DocID string `json:"doc_id"`
		Hash  string `json:"hash"`
	}
	if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
		if id := strings.TrimSpace(legacy.DocID); id != "" {
			return QRPayload{DocID: id, ClaimedHash: strings.TrimSpace(legacy.Hash)}, nil
		}
	}

	return QRPayload{}, WrapError(ErrInvalidInput, "parse qr payload", errors.New("payload carries no document id"))
}
