package qr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"docshield/internal/core/domain"
)

func renderTestQR(t *testing.T, payload string) []byte {
	t.Helper()
	data, err := NewRenderer().Render(payload, 300)
	if err != nil {
		t.Fatalf("render qr: %v", err)
	}
	return data
}

func TestDecodeCleanQR(t *testing.T) {
	payload := "https://verify.example/?hash=abc123&verify=doc-1"
	data := renderTestQR(t, payload)

	result, err := NewDecoder().Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Payload != payload {
		t.Fatalf("payload: want %q, got %q", payload, result.Payload)
	}
	if result.Strategy == "" || result.Tier == 0 {
		t.Fatalf("expected strategy attribution, got %+v", result)
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	data := renderTestQR(t, "https://verify.example/?hash=h&verify=doc-2")
	decoder := NewDecoder()

	first, err := decoder.Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := decoder.Decode(context.Background(), data)
		if err != nil {
			t.Fatalf("Decode run %d: %v", i, err)
		}
		if again.Payload != first.Payload || again.Strategy != first.Strategy {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestDecodeInvertedQR(t *testing.T) {
	data := renderTestQR(t, "https://verify.example/?hash=h&verify=doc-3")

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	inverted := invertGray(toGray(src))
	var buf bytes.Buffer
	if err := png.Encode(&buf, inverted); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	result, err := NewDecoder().Decode(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("Decode inverted: %v", err)
	}
	if result.Payload != "https://verify.example/?hash=h&verify=doc-3" {
		t.Fatalf("unexpected payload %q", result.Payload)
	}
}

func TestDecodeExhaustsOnBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	_, err := NewDecoder().Decode(context.Background(), buf.Bytes())
	if !domain.IsKind(err, domain.ErrNoQRDetected) {
		t.Fatalf("expected no-qr error, got %v", err)
	}
}

func TestDecodeRejectsNonImage(t *testing.T) {
	_, err := NewDecoder().Decode(context.Background(), []byte("not an image"))
	if !domain.IsKind(err, domain.ErrNoQRDetected) {
		t.Fatalf("expected no-qr error for undecodable bytes, got %v", err)
	}
}

func TestDecodeHonorsContextCancellation(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 400, 400))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder().Decode(ctx, buf.Bytes())
	if err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestStrategyOrderIsTiered(t *testing.T) {
	all := strategies()
	if len(all) != 14 {
		t.Fatalf("expected 14 strategies, got %d", len(all))
	}
	if all[0].name != "direct" || all[0].tier != 1 {
		t.Fatalf("first strategy must be direct tier 1, got %+v", all[0])
	}
	seenTier2 := false
	for _, st := range all {
		switch st.tier {
		case 1:
			if seenTier2 {
				t.Fatalf("tier 1 strategy %q after tier 2 began", st.name)
			}
		case 2:
			seenTier2 = true
		default:
			t.Fatalf("unexpected tier %d for %q", st.tier, st.name)
		}
	}
	if !seenTier2 {
		t.Fatalf("expected tier 2 escalation strategies")
	}
}

func TestRenderRejectsEmptyPayload(t *testing.T) {
	if _, err := NewRenderer().Render("", 300); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
