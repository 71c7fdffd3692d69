package assets

import (
	"fmt"
	"os"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// DefaultStyle is the table style used when none is configured.
const DefaultStyle = "table"

// Template names.
const (
	TableTemplate = "table"
	DeckTemplate  = "deck"
)

// MaxStyleFileSize bounds CSS files read from disk.
const MaxStyleFileSize = 1 << 20

// ResolveStyle turns a style reference into CSS.
// The reference is inline CSS when it contains "{", a file path when it
// contains a separator, and a style name otherwise. Empty means DefaultStyle.
func ResolveStyle(loader AssetLoader, ref string) (string, error) {
	switch {
	case ref == "":
		return loader.LoadStyle(DefaultStyle)
	case fileutil.IsCSS(ref):
		return ref, nil
	case fileutil.IsFilePath(ref):
		info, err := os.Stat(ref)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrStyleNotFound, ref)
			}
			return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		if info.Size() > MaxStyleFileSize {
			return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrAssetRead, ref, MaxStyleFileSize)
		}
		data, err := os.ReadFile(ref) // #nosec G304 -- style path is user-provided
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
		return string(data), nil
	default:
		return loader.LoadStyle(ref)
	}
}
