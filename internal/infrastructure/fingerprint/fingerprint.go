package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"math/bits"
	"strconv"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	"docshield/internal/core/domain"
)

const fingerprintBits = 64

// Service computes the two independent content signals: an exact sha256
// digest over the raw bytes and a 64-bit DCT perception hash tolerant to
// recompression, resize, and minor scan noise.
type Service struct{}

func New() *Service {
	return &Service{}
}

func (s *Service) ExactDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Perceptual returns the fingerprint as 16 hex characters. Fails when the
// bytes do not decode as a raster image.
func (s *Service) Perceptual(imageBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "perceptual fingerprint", err)
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}

// Distance is the Hamming distance between two fingerprints normalized to
// [0,1]. 0 means identical bit vectors.
func (s *Service) Distance(fp1, fp2 string) (float64, error) {
	a, err := parseFingerprint(fp1)
	if err != nil {
		return 0, err
	}
	b, err := parseFingerprint(fp2)
	if err != nil {
		return 0, err
	}
	return float64(bits.OnesCount64(a^b)) / fingerprintBits, nil
}

func parseFingerprint(fp string) (uint64, error) {
	if len(fp) != fingerprintBits/4 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse fingerprint",
			fmt.Errorf("fingerprint must be %d hex chars, got %d", fingerprintBits/4, len(fp)))
	}
	v, err := strconv.ParseUint(fp, 16, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse fingerprint", err)
	}
	return v, nil
}

// Features captures coarse image statistics used as a secondary similarity
// signal.
func (s *Service) Features(imageBytes []byte) (domain.StatFeatures, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return domain.StatFeatures{}, domain.WrapError(domain.ErrInvalidInput, "image features", err)
	}
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return domain.StatFeatures{}, domain.WrapError(domain.ErrInvalidInput, "image features", errors.New("empty image"))
	}

	var sum, sumSq float64
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(gray.NRGBAAt(x, y).R)
			sum += v
			sumSq += v * v
			count++
		}
	}
	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}

	return domain.StatFeatures{
		MeanIntensity: mean,
		StdIntensity:  math.Sqrt(variance),
		AspectRatio:   float64(w) / float64(h),
	}, nil
}

// FeatureSimilarity scores two feature sets in [0,1] from the min/max ratio
// of each statistic. Intensity ratios get a small boost since lighting shifts
// are expected between scans. 0.5 when either side is missing.
func (s *Service) FeatureSimilarity(stored, submitted domain.StatFeatures) float64 {
	if stored.IsZero() || submitted.IsZero() {
		return 0.5
	}

	var scores []float64
	if r, ok := ratio(stored.MeanIntensity, submitted.MeanIntensity); ok {
		scores = append(scores, math.Min(1.0, r*1.2))
	}
	if r, ok := ratio(stored.StdIntensity, submitted.StdIntensity); ok {
		scores = append(scores, math.Min(1.0, r*1.3))
	}
	if r, ok := ratio(stored.AspectRatio, submitted.AspectRatio); ok {
		scores = append(scores, r)
	}
	if len(scores) == 0 {
		return 0.5
	}

	total := 0.0
	for _, sc := range scores {
		total += sc
	}
	return total / float64(len(scores))
}

func ratio(a, b float64) (float64, bool) {
	if a <= 0 || b <= 0 {
		return 0, false
	}
	return math.Min(a, b) / math.Max(a, b), true
}
