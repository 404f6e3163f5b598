package processor

import (
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	maxThumbWidth  = 640
	maxThumbHeight = 360

	thumbJPEGQuality = 90
)

// boundThumbnail shrinks the extracted frame in place when it exceeds the
// delivery bounds, preserving aspect ratio. Frames already within bounds are
// left untouched.
func boundThumbnail(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	if w == 0 || h == 0 {
		return nil
	}

	ratio := w / maxThumbWidth
	if hRatio := h / maxThumbHeight; hRatio > ratio {
		ratio = hRatio
	}
	if ratio <= 1 {
		return nil
	}

	resized := imaging.Resize(img, int(w/ratio), int(h/ratio), imaging.Lanczos)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(thumbJPEGQuality)); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}
