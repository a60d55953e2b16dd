package qr

import (
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// Pixel-level transforms feeding the strategy chain. The resampling, blur,
// sharpen, and inversion steps ride on the imaging package; binarization and
// morphology have no pure-Go library equivalent and are implemented directly
// on image.Gray.

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}

func blur(g *image.Gray, sigma float64) image.Image {
	return imaging.Blur(g, sigma)
}

func sharpen(g *image.Gray, sigma float64) image.Image {
	return imaging.Sharpen(g, sigma)
}

func invertGray(g *image.Gray) image.Image {
	return imaging.Invert(g)
}

func scale(g *image.Gray, factor float64) image.Image {
	b := g.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 || h < 1 {
		return g
	}
	return imaging.Resize(g, w, h, imaging.Lanczos)
}

func histogram(g *image.Gray) [256]int {
	var hist [256]int
	for _, px := range g.Pix {
		hist[px]++
	}
	return hist
}

// equalizeHist applies global histogram equalization.
func equalizeHist(g *image.Gray) *image.Gray {
	hist := histogram(g)
	total := len(g.Pix)
	if total == 0 {
		return g
	}

	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8(255 * cum / total)
	}

	out := image.NewGray(g.Bounds())
	for i, px := range g.Pix {
		out.Pix[i] = lut[px]
	}
	return out
}

// localEqualize is a tile-based contrast enhancer in the manner of CLAHE:
// each tile gets its own clipped-histogram equalization mapping. clip caps a
// bin at clip×(tile pixels / 256) before the CDF is built.
func localEqualize(g *image.Gray, tiles int, clip float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || tiles < 1 {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, w, h))

	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	for ty := 0; ty < h; ty += tileH {
		for tx := 0; tx < w; tx += tileW {
			x1 := min(tx+tileW, w)
			y1 := min(ty+tileH, h)

			var hist [256]int
			count := 0
			for y := ty; y < y1; y++ {
				for x := tx; x < x1; x++ {
					hist[g.GrayAt(x, y).Y]++
					count++
				}
			}
			if count == 0 {
				continue
			}

			// Clip and redistribute the excess uniformly.
			limit := int(clip * float64(count) / 256)
			if limit < 1 {
				limit = 1
			}
			excess := 0
			for i := 0; i < 256; i++ {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			share := excess / 256
			for i := 0; i < 256; i++ {
				hist[i] += share
			}

			var lut [256]uint8
			cum := 0
			for i := 0; i < 256; i++ {
				cum += hist[i]
				lut[i] = uint8(255 * cum / count)
			}

			for y := ty; y < y1; y++ {
				for x := tx; x < x1; x++ {
					out.SetGray(x, y, color.Gray{Y: lut[g.GrayAt(x, y).Y]})
				}
			}
		}
	}
	return out
}

// otsuThreshold binarizes with the global threshold maximizing between-class
// variance.
func otsuThreshold(g *image.Gray) *image.Gray {
	hist := histogram(g)
	total := len(g.Pix)
	if total == 0 {
		return g
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i) * float64(hist[i])
	}

	var sumB, wB float64
	var maxVar float64
	threshold := 127
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = t
		}
	}

	return binarize(g, func(x, y int, v uint8) bool { return int(v) > threshold })
}

// adaptiveThreshold binarizes against the local window mean minus c, using an
// integral image for the window sums.
func adaptiveThreshold(g *image.Gray, window, c int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return g
	}
	if window%2 == 0 {
		window++
	}
	r := window / 2

	integral := make([]int64, (w+1)*(h+1))
	idx := func(x, y int) int { return y*(w+1) + x }
	for y := 1; y <= h; y++ {
		var rowSum int64
		for x := 1; x <= w; x++ {
			rowSum += int64(g.GrayAt(x-1, y-1).Y)
			integral[idx(x, y)] = integral[idx(x, y-1)] + rowSum
		}
	}

	return binarize(g, func(x, y int, v uint8) bool {
		x0, y0 := max(x-r, 0), max(y-r, 0)
		x1, y1 := min(x+r+1, w), min(y+r+1, h)
		area := int64((x1 - x0) * (y1 - y0))
		sum := integral[idx(x1, y1)] - integral[idx(x0, y1)] - integral[idx(x1, y0)] + integral[idx(x0, y0)]
		return int64(v)*area > (sum - int64(c)*area)
	})
}

func binarize(g *image.Gray, above func(x, y int, v uint8) bool) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := uint8(0)
			if above(x, y, g.GrayAt(b.Min.X+x, b.Min.Y+y).Y) {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}

// Grayscale morphology with a 3×3 structuring element: dilate takes the
// neighborhood max, erode the min.

func morphClose(g *image.Gray) *image.Gray {
	return erode(dilate(g))
}

func morphOpen(g *image.Gray) *image.Gray {
	return dilate(erode(g))
}

func dilate(g *image.Gray) *image.Gray {
	return neighborhood(g, func(vals []uint8) uint8 {
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

func erode(g *image.Gray) *image.Gray {
	return neighborhood(g, func(vals []uint8) uint8 {
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

func median3(g *image.Gray) *image.Gray {
	return neighborhood(g, func(vals []uint8) uint8 {
		sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
		return vals[len(vals)/2]
	})
}

func neighborhood(g *image.Gray, combine func([]uint8) uint8) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	vals := make([]uint8, 0, 9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			vals = vals[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					vals = append(vals, g.GrayAt(b.Min.X+nx, b.Min.Y+ny).Y)
				}
			}
			out.SetGray(x, y, color.Gray{Y: combine(vals)})
		}
	}
	return out
}
