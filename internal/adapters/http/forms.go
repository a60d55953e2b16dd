package httpadapter

import (
	"net/http"
	"strings"

	"docshield/internal/core/domain"
)

func issueRequestFromForm(r *http.Request, filename string, content []byte) domain.IssueRequest {
	return domain.IssueRequest{
		DocID:      strings.TrimSpace(r.FormValue("doc_id")),
		HolderName: strings.TrimSpace(r.FormValue("holder_name")),
		DocType:    strings.TrimSpace(r.FormValue("doc_type")),
		IssueDate:  strings.TrimSpace(r.FormValue("issue_date")),
		ExpiryDate: strings.TrimSpace(r.FormValue("expiry_date")),
		Notes:      strings.TrimSpace(r.FormValue("notes")),
		Filename:   filename,
		Content:    content,
	}
}
