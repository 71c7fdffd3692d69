package doctools

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/alnah/go-doctools/internal/fileutil"
)

// AspectRatio names a slide geometry.
type AspectRatio string

// Supported aspect ratios.
const (
	AspectWidescreen AspectRatio = "widescreen" // 16:9
	AspectNormal     AspectRatio = "normal"     // 4:3
	AspectA1         AspectRatio = "A1"         // ISO 216 portrait, 1:√2
)

// DefaultAspectRatio is used when the caller gives none.
const DefaultAspectRatio = AspectWidescreen

// AspectRatios lists the accepted values in display order.
var AspectRatios = []AspectRatio{AspectWidescreen, AspectNormal, AspectA1}

// slideSizes maps each aspect ratio to CSS pixel dimensions.
var slideSizes = map[AspectRatio][2]int{
	AspectWidescreen: {1280, 720},
	AspectNormal:     {960, 720},
	AspectA1:         {720, 1018},
}

// Validate returns ErrInvalidAspectRatio unless a is a supported value.
// Matching is exact: "a1" and "Widescreen" are rejected.
func (a AspectRatio) Validate() error {
	if _, ok := slideSizes[a]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAspectRatio, string(a))
	}
	return nil
}

// Dimensions returns the slide width and height in CSS pixels.
func (a AspectRatio) Dimensions() (width, height int) {
	s := slideSizes[a]
	return s[0], s[1]
}

// aspectRatioList renders the accepted values as 'a', 'b', 'c'.
func aspectRatioList() string {
	quoted := make([]string, len(AspectRatios))
	for i, a := range AspectRatios {
		quoted[i] = "'" + string(a) + "'"
	}
	return strings.Join(quoted, ", ")
}

// DownloadResult describes a completed download.
// Width and Height are set only when the target is an image.
type DownloadResult struct {
	Path   string
	Width  int
	Height int
}

// IsImage reports whether resolution was measured.
func (r *DownloadResult) IsImage() bool {
	return r.Width > 0 && r.Height > 0
}

// String renders the tool's success message.
func (r *DownloadResult) String() string {
	msg := "File downloaded to " + r.Path
	if r.IsImage() {
		msg += fmt.Sprintf(" (resolution: %dx%d)", r.Width, r.Height)
	}
	return msg
}

// ImageReference is one ![label](path) occurrence in markdown.
type ImageReference struct {
	Label string
	Path  string
}

// IsExternal reports whether the path is an http(s) URL.
func (r ImageReference) IsExternal() bool {
	return fileutil.IsURL(r.Path)
}

// InspectionResult is the outcome of inspecting one manuscript page.
type InspectionResult struct {
	PageID      string   `json:"page_id"`
	PageContent string   `json:"page_content"`
	Warnings    []string `json:"warnings"`
}

// SlideImage is a rasterized slide.
type SlideImage struct {
	Data     []byte
	MIMEType string
}

// DataURI renders the image as data:<mime>;base64,<payload>.
func (s *SlideImage) DataURI() string {
	return "data:" + s.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
