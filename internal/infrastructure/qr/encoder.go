package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"docshield/internal/core/domain"
)

// Renderer produces the QR stamp embedded into issued documents.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(payload string, sizePx int) ([]byte, error) {
	if payload == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "render qr", errors.New("empty payload"))
	}
	if sizePx <= 0 {
		sizePx = 300
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, sizePx)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}
