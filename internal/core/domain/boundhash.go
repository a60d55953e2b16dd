package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// BoundHash derives the hash embedded into the issued QR code. It binds the
// identity fields and the content digest together, so a QR code transplanted
// onto another document cannot reproduce it. The preimage layout is fixed:
// records issued by older installations must keep verifying.
func BoundHash(docID, holderName, docType, issueDate, contentDigest string) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s", docID, holderName, docType, issueDate, contentDigest)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// BoundHashFor recomputes the bound hash from a stored record.
func BoundHashFor(rec *DocumentRecord) string {
	return BoundHash(rec.DocID, rec.HolderName, rec.DocType, rec.IssueDate, rec.ContentDigest)
}
