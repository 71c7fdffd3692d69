package doctools

import (
	"fmt"
	"image"
	"os"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// imageExtensions are the targets whose resolution is reported after download.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

// imageDimensions decodes only the header of the file at path.
func imageDimensions(path string) (width, height int, err error) {
	f, err := os.Open(path) // #nosec G304 -- path is the caller's download target
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s image has no pixels", format)
	}
	return cfg.Width, cfg.Height, nil
}
