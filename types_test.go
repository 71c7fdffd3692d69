package doctools

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestAspectRatio - Validation and geometry
// ---------------------------------------------------------------------------

func TestAspectRatio_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		aspect  AspectRatio
		wantErr bool
	}{
		{name: "widescreen", aspect: AspectWidescreen},
		{name: "normal", aspect: AspectNormal},
		{name: "A1", aspect: AspectA1},
		{name: "lowercase a1 rejected", aspect: "a1", wantErr: true},
		{name: "capitalized rejected", aspect: "Widescreen", wantErr: true},
		{name: "empty rejected", aspect: "", wantErr: true},
		{name: "unknown rejected", aspect: "square", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.aspect.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAspectRatio) {
					t.Errorf("Validate() = %v, want ErrInvalidAspectRatio", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestAspectRatio_Dimensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		aspect     AspectRatio
		wantWidth  int
		wantHeight int
	}{
		{AspectWidescreen, 1280, 720},
		{AspectNormal, 960, 720},
		{AspectA1, 720, 1018},
	}

	for _, tt := range tests {
		t.Run(string(tt.aspect), func(t *testing.T) {
			t.Parallel()

			w, h := tt.aspect.Dimensions()
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Dimensions() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestAspectRatioList(t *testing.T) {
	t.Parallel()

	want := "'widescreen', 'normal', 'A1'"
	if got := aspectRatioList(); got != want {
		t.Errorf("aspectRatioList() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestDownloadResult - Message rendering
// ---------------------------------------------------------------------------

func TestDownloadResult_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result DownloadResult
		want   string
	}{
		{
			name:   "plain file",
			result: DownloadResult{Path: "out/data.csv"},
			want:   "File downloaded to out/data.csv",
		},
		{
			name:   "image with resolution",
			result: DownloadResult{Path: "img/logo.png", Width: 640, Height: 480},
			want:   "File downloaded to img/logo.png (resolution: 640x480)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.result.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageReference_IsExternal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"http://example.com/x.png", true},
		{"https://example.com/x.png", true},
		{"HTTPS://EXAMPLE.COM/X.PNG", true},
		{"images/x.png", false},
		{"/abs/x.png", false},
		{"ftp://example.com/x.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := (ImageReference{Path: tt.path}).IsExternal(); got != tt.want {
				t.Errorf("IsExternal(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestInspectionResult_JSONFieldNames(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(InspectionResult{PageID: "01/02", PageContent: "x", Warnings: []string{}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"page_id":"01/02","page_content":"x","warnings":[]}`
	if string(out) != want {
		t.Errorf("Marshal() = %s, want %s", out, want)
	}
}

func TestSlideImage_DataURI(t *testing.T) {
	t.Parallel()

	img := &SlideImage{Data: []byte("jpeg"), MIMEType: "image/jpeg"}
	got := img.DataURI()

	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Errorf("DataURI() = %q, want data:image/jpeg;base64, prefix", got)
	}
	if !strings.HasSuffix(got, "anBlZw==") {
		t.Errorf("DataURI() = %q, want base64 of payload", got)
	}
}

func TestPathError(t *testing.T) {
	t.Parallel()

	err := error(&PathError{Err: ErrFileNotFound, Path: "notes.md"})

	if !errors.Is(err, ErrFileNotFound) {
		t.Error("PathError should unwrap to its sentinel")
	}
	if got := err.Error(); got != "file does not exist: notes.md" {
		t.Errorf("Error() = %q", got)
	}
}
