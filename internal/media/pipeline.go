package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// aspect is one of the shapes a post image is cropped to.
type aspect struct {
	name  string
	ratio float64 // width / height
}

var (
	aspectSquare = aspect{"square", 1.0}
	postAspects  = []aspect{{"landscape", 1.91}, aspectSquare, {"portrait", 0.8}}
)

// closestAspect picks the post aspect nearest to w:h. Ties go to square.
func closestAspect(w, h int) aspect {
	ratio := float64(w) / float64(h)
	best := aspectSquare
	for _, a := range postAspects {
		if math.Abs(ratio-a.ratio) < math.Abs(ratio-best.ratio) {
			best = a
		}
	}
	return best
}

// cropRect is the largest rectangle of the given ratio centered in w x h.
func cropRect(w, h int, ratio float64) image.Rectangle {
	cw, ch := w, h
	if float64(w)/float64(h) > ratio {
		cw = max(int(float64(h)*ratio), 1)
	} else {
		ch = max(int(float64(w)/ratio), 1)
	}
	x, y := (w-cw)/2, (h-ch)/2
	return image.Rect(x, y, x+cw, y+ch)
}

// selectCropMode returns the chosen aspect name and its crop rectangle.
func selectCropMode(w, h int) (string, image.Rectangle) {
	if w <= 0 || h <= 0 {
		return "free", image.Rect(0, 0, w, h)
	}
	a := closestAspect(w, h)
	return a.name, cropRect(w, h, a.ratio)
}

// crop copies r (relative to src's origin) into a new RGBA image.
func crop(src image.Image, r image.Rectangle) image.Image {
	if r.Empty() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min.Add(r.Min), draw.Src)
	return dst
}

func scaleTo(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// fitWithin downscales src so neither edge exceeds limit. Smaller images are
// returned unchanged.
func fitWithin(src image.Image, limit int) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w <= limit && h <= limit {
		return src
	}
	f := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	return scaleTo(src, max(int(float64(w)*f), 1), max(int(float64(h)*f), 1))
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatMIME maps image.Decode format names to the MIME types we accept.
var formatMIME = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

func normalizeContentType(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

func isAllowedImageMIME(contentType string) bool {
	ct := normalizeContentType(contentType)
	for _, allowed := range formatMIME {
		if ct == allowed {
			return true
		}
	}
	return false
}

// contentHash names a stored file; the owner is mixed in so two users
// uploading the same bytes get separate files.
func contentHash(owner string, content []byte) string {
	sum := sha256.Sum256(append([]byte(owner+":"), content...))
	return hex.EncodeToString(sum[:])
}

// isValidHash accepts only lowercase hex, which rules out path traversal.
func isValidHash(hash string) bool {
	if hash == "" || len(hash) > 128 {
		return false
	}
	return strings.Trim(hash, "0123456789abcdef") == ""
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
