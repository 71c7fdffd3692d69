package doctools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-doctools/internal/assets"
	"github.com/alnah/go-doctools/internal/config"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// Tool names.
const (
	ToolDownloadFile         = "download_file"
	ToolMarkdownTableToImage = "markdown_table_to_image"
	ToolInspectSlide         = "inspect_slide"
	ToolInspectManuscript    = "inspect_manuscript"
)

// Messages returned at the tool boundary.
const (
	msgDownloadFailed   = "Failed to download file from %s"
	msgInvalidImage     = "The provided URL does not point to a valid image file: %s"
	msgTableSaved       = "Markdown table converted to image and saved to %s"
	msgTableFailed      = "Failed to convert markdown table to image: %s"
	msgNotHTML          = "HTML path %s does not exist or is not an HTML file"
	msgAspectRatio      = "aspect_ratio should be one of %s"
	msgSlideFailed      = "Slide inspection failed: %s"
	msgNoSlideOutput    = "Slide inspection failed: slide rasterization produced no output."
	msgFileNotFound     = "file does not exist: %s"
	msgNotMarkdown      = "file is not a markdown file: %s"
	msgInvalidPageID    = "Page ID should be a positive integer starting from 1."
	msgPageOutOfRange   = "Page ID exceeds the number of pages in the document. You could view full content using `read_file` to see if format error happened."
	msgInternalFailure  = "%s failed: internal error: %v"
	msgInvalidArguments = "invalid arguments for %s: %v"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

// Parameter types.
const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Enum        []string
}

// OutputKind tells which field of Output is set.
type OutputKind int

// Output kinds.
const (
	OutputText OutputKind = iota
	OutputImage
	OutputData
)

// Output is the result of a tool call: text, an image, or structured data.
type Output struct {
	Kind  OutputKind
	Text  string
	Image *SlideImage
	Data  any
}

// TextOutput wraps a message.
func TextOutput(s string) Output { return Output{Kind: OutputText, Text: s} }

// ImageOutput wraps an image.
func ImageOutput(img *SlideImage) Output { return Output{Kind: OutputImage, Image: img} }

// DataOutput wraps a JSON-serializable value.
func DataOutput(v any) Output { return Output{Kind: OutputData, Data: v} }

// Tool is a named operation a host can invoke.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Call        func(ctx context.Context, args Arguments) Output
}

// Registrar accepts tools from a Toolkit.
type Registrar interface {
	RegisterTool(Tool) error
}

// SlideOutcome is either an image or a failure message.
type SlideOutcome struct {
	Image   *SlideImage
	Message string
}

// Output converts the outcome for a host.
func (o SlideOutcome) Output() Output {
	if o.Image != nil {
		return ImageOutput(o.Image)
	}
	return TextOutput(o.Message)
}

// ManuscriptOutcome is either an inspection result or an error message.
// It serializes as the result object or as {"error": "..."}.
type ManuscriptOutcome struct {
	Result *InspectionResult
	Error  string
}

// MarshalJSON implements json.Marshaler.
func (o ManuscriptOutcome) MarshalJSON() ([]byte, error) {
	if o.Result != nil {
		return json.Marshal(o.Result)
	}
	return json.Marshal(struct {
		Error string `json:"error"`
	}{o.Error})
}

// Toolkit exposes the document tools. Methods never return errors: every
// failure becomes a message the calling agent can act on.
type Toolkit struct {
	fetcher     *Fetcher
	tables      *TableRenderer
	slides      *SlideInspector
	manuscripts *ManuscriptInspector
	pool        *RasterizerPool
	ownsPool    bool
	logger      *slog.Logger
}

// ToolkitOption configures a Toolkit.
type ToolkitOption func(*Toolkit)

// WithFetcher sets the download component.
func WithFetcher(f *Fetcher) ToolkitOption {
	return func(t *Toolkit) { t.fetcher = f }
}

// WithRasterizerPool shares an existing pool. The Toolkit does not close it.
func WithRasterizerPool(p *RasterizerPool) ToolkitOption {
	return func(t *Toolkit) { t.pool = p }
}

// WithTableRenderer sets the table component.
func WithTableRenderer(r *TableRenderer) ToolkitOption {
	return func(t *Toolkit) { t.tables = r }
}

// WithSlideInspector sets the slide component.
func WithSlideInspector(s *SlideInspector) ToolkitOption {
	return func(t *Toolkit) { t.slides = s }
}

// WithManuscriptInspector sets the manuscript component.
func WithManuscriptInspector(m *ManuscriptInspector) ToolkitOption {
	return func(t *Toolkit) { t.manuscripts = m }
}

// WithLogger sets the logger for tool failures.
func WithLogger(l *slog.Logger) ToolkitOption {
	return func(t *Toolkit) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewToolkit creates a Toolkit. Components not supplied get defaults; a
// default browser pool is created lazily and closed by Close.
func NewToolkit(opts ...ToolkitOption) *Toolkit {
	t := &Toolkit{logger: doclog.Discard()}
	for _, opt := range opts {
		opt(t)
	}
	if t.fetcher == nil {
		t.fetcher = NewFetcher(WithFetchLogger(t.logger))
	}
	if t.manuscripts == nil {
		t.manuscripts = NewManuscriptInspector(WithManuscriptLogger(t.logger))
	}
	if t.tables == nil || t.slides == nil {
		if t.pool == nil {
			t.pool = NewRasterizerPool(ResolvePoolSize(0))
			t.ownsPool = true
		}
		if t.tables == nil {
			t.tables = NewTableRenderer(t.pool, WithTableLogger(t.logger))
		}
		if t.slides == nil {
			t.slides = NewSlideInspector(t.pool, WithSlideLogger(t.logger))
		}
	}
	return t
}

// NewToolkitFromConfig builds every component from cfg.
// The table style and asset directory are checked before returning.
func NewToolkitFromConfig(cfg *config.Config, logger *slog.Logger) (*Toolkit, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = doclog.Discard()
	}

	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if cfg.Render.AssetPath != "" {
		resolver, err := assets.NewAssetResolver(cfg.Render.AssetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}
	if _, err := resolveStyle(loader, cfg.Render.TableStyle); err != nil {
		return nil, err
	}

	fetcher := NewFetcher(
		WithRetries(cfg.Fetch.Retries),
		WithBackoff(cfg.Fetch.Backoff),
		WithChunkSize(cfg.Fetch.ChunkSize),
		WithAttemptTimeout(cfg.Fetch.Timeout),
		WithUserAgents(RandomUserAgents(cfg.Fetch.UserAgents)),
		WithInsecureSkipVerify(cfg.Fetch.SkipTLSVerify()),
		WithFetchLogger(logger),
	)

	pool := NewRasterizerPool(ResolvePoolSize(cfg.Render.Workers),
		WithRenderTimeout(cfg.Render.Timeout),
		WithBrowserBin(cfg.Render.BrowserBin),
		WithNoSandbox(cfg.Render.NoSandbox),
	)

	t := NewToolkit(
		WithLogger(logger),
		WithFetcher(fetcher),
		WithRasterizerPool(pool),
		WithTableRenderer(NewTableRenderer(pool,
			WithAssetLoader(loader),
			WithTableStyle(cfg.Render.TableStyle),
			WithTableLogger(logger),
		)),
		WithSlideInspector(NewSlideInspector(pool,
			WithSlideAssetLoader(loader),
			WithSlideLogger(logger),
		)),
	)
	t.ownsPool = true
	return t, nil
}

// Close shuts down browsers owned by the Toolkit.
func (t *Toolkit) Close() error {
	if t.ownsPool && t.pool != nil {
		return t.pool.Close()
	}
	return nil
}

// Fetcher returns the download component. The CLI calls components
// directly so failures keep their error type.
func (t *Toolkit) Fetcher() *Fetcher { return t.fetcher }

// Tables returns the table component.
func (t *Toolkit) Tables() *TableRenderer { return t.tables }

// Slides returns the slide component.
func (t *Toolkit) Slides() *SlideInspector { return t.slides }

// Manuscripts returns the manuscript component.
func (t *Toolkit) Manuscripts() *ManuscriptInspector { return t.manuscripts }

// DownloadFile downloads url to outputPath and reports the result.
func (t *Toolkit) DownloadFile(ctx context.Context, url, outputPath string) string {
	res, err := t.fetcher.Download(ctx, url, outputPath)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return fmt.Sprintf(msgInvalidImage, causeOf(err, ErrInvalidImage))
		}
		t.logger.Warn("tool failed", "tool", ToolDownloadFile, "url", url, "error", err)
		return fmt.Sprintf(msgDownloadFailed, url)
	}
	return res.String()
}

// MarkdownTableToImage renders markdownTable to the image at path.
func (t *Toolkit) MarkdownTableToImage(ctx context.Context, markdownTable, path, css string) string {
	if err := t.tables.Render(ctx, markdownTable, path, css); err != nil {
		t.logger.Warn("tool failed", "tool", ToolMarkdownTableToImage, "path", path, "error", err)
		return fmt.Sprintf(msgTableFailed, err)
	}
	return fmt.Sprintf(msgTableSaved, path)
}

// InspectSlide renders htmlFile as a slide. An empty aspect ratio means
// DefaultAspectRatio.
func (t *Toolkit) InspectSlide(ctx context.Context, htmlFile, aspectRatio string) SlideOutcome {
	aspect := AspectRatio(aspectRatio)
	if aspect == "" {
		aspect = DefaultAspectRatio
	}

	img, err := t.slides.Inspect(ctx, htmlFile, aspect)
	if err == nil {
		return SlideOutcome{Image: img}
	}

	var pathErr *PathError
	switch {
	case errors.As(err, &pathErr) && errors.Is(err, ErrNotHTMLFile):
		return SlideOutcome{Message: fmt.Sprintf(msgNotHTML, pathErr.Path)}
	case errors.Is(err, ErrInvalidAspectRatio):
		return SlideOutcome{Message: fmt.Sprintf(msgAspectRatio, aspectRatioList())}
	case errors.Is(err, ErrNoSlideOutput):
		return SlideOutcome{Message: msgNoSlideOutput}
	}

	t.logger.Warn("tool failed", "tool", ToolInspectSlide, "path", htmlFile, "error", err)
	return SlideOutcome{Message: fmt.Sprintf(msgSlideFailed, err)}
}

// InspectManuscript returns page pageID of mdFile with its warnings.
func (t *Toolkit) InspectManuscript(ctx context.Context, mdFile string, pageID int) ManuscriptOutcome {
	res, err := t.manuscripts.Inspect(ctx, mdFile, pageID)
	if err == nil {
		return ManuscriptOutcome{Result: res}
	}

	var pathErr *PathError
	errors.As(err, &pathErr)

	switch {
	case errors.Is(err, ErrFileNotFound) && pathErr != nil:
		return ManuscriptOutcome{Error: fmt.Sprintf(msgFileNotFound, pathErr.Path)}
	case errors.Is(err, ErrNotMarkdown) && pathErr != nil:
		return ManuscriptOutcome{Error: fmt.Sprintf(msgNotMarkdown, pathErr.Path)}
	case errors.Is(err, ErrInvalidPageID):
		return ManuscriptOutcome{Error: msgInvalidPageID}
	case errors.Is(err, ErrPageOutOfRange):
		return ManuscriptOutcome{Error: msgPageOutOfRange}
	}

	t.logger.Warn("tool failed", "tool", ToolInspectManuscript, "path", mdFile, "error", err)
	return ManuscriptOutcome{Error: err.Error()}
}

// Tools describes the four tools for registration with a host.
func (t *Toolkit) Tools() []Tool {
	return []Tool{
		{
			Name:        ToolDownloadFile,
			Description: "Download a file from a URL and save it to a local path.",
			Params: []Param{
				{Name: "url", Type: ParamString, Description: "The http(s) URL to download", Required: true},
				{Name: "output_path", Type: ParamString, Description: "The local file path to save to", Required: true},
			},
			Call: t.guard(ToolDownloadFile, t.callDownloadFile),
		},
		{
			Name: ToolMarkdownTableToImage,
			Description: "Convert a markdown table to an image and save it to the specified path. " +
				"Returns a confirmation message with the path to the saved image.",
			Params: []Param{
				{Name: "markdown_table", Type: ParamString, Description: "The markdown table content to convert", Required: true},
				{Name: "path", Type: ParamString, Description: "The file path where the image will be saved", Required: true},
				{
					Name: "css",
					Type: ParamString,
					Description: "Custom CSS styles for the table. Use class selectors (table, thead, th, td) " +
						"to style the table elements. Avoid changing background colors outside the table area.",
					Required: true,
				},
			},
			Call: t.guard(ToolMarkdownTableToImage, t.callMarkdownTableToImage),
		},
		{
			Name:        ToolInspectSlide,
			Description: "Read the HTML file as an image. " +
				"Over MCP the JPEG is returned as image content with plain base64 data and mimeType image/jpeg, " +
				"without a data:image/jpeg;base64, prefix.",
			Params: []Param{
				{Name: "html_file", Type: ParamString, Description: "Path to the .html slide", Required: true},
				{
					Name:        "aspect_ratio",
					Type:        ParamString,
					Description: "Slide geometry",
					Default:     string(DefaultAspectRatio),
					Enum:        aspectRatioNames(),
				},
			},
			Call: t.guard(ToolInspectSlide, t.callInspectSlide),
		},
		{
			Name:        ToolInspectManuscript,
			Description: "Inspect a specific page from a markdown file.",
			Params: []Param{
				{Name: "md_file", Type: ParamString, Description: "The path to the markdown file", Required: true},
				{Name: "page_id", Type: ParamInteger, Description: "The page number to read (1-based index)", Default: 1},
			},
			Call: t.guard(ToolInspectManuscript, t.callInspectManuscript),
		},
	}
}

// Register adds every tool to r.
func (t *Toolkit) Register(r Registrar) error {
	for _, tool := range t.Tools() {
		if err := r.RegisterTool(tool); err != nil {
			return fmt.Errorf("registering %s: %w", tool.Name, err)
		}
	}
	return nil
}

func (t *Toolkit) callDownloadFile(ctx context.Context, args Arguments) Output {
	url, err := args.RequiredString("url")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolDownloadFile, err))
	}
	out, err := args.RequiredString("output_path")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolDownloadFile, err))
	}
	return TextOutput(t.DownloadFile(ctx, url, out))
}

func (t *Toolkit) callMarkdownTableToImage(ctx context.Context, args Arguments) Output {
	table, err := args.RequiredString("markdown_table")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolMarkdownTableToImage, err))
	}
	path, err := args.RequiredString("path")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolMarkdownTableToImage, err))
	}
	css, err := args.String("css", "")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolMarkdownTableToImage, err))
	}
	return TextOutput(t.MarkdownTableToImage(ctx, table, path, css))
}

func (t *Toolkit) callInspectSlide(ctx context.Context, args Arguments) Output {
	file, err := args.RequiredString("html_file")
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolInspectSlide, err))
	}
	aspect, err := args.String("aspect_ratio", string(DefaultAspectRatio))
	if err != nil {
		return TextOutput(fmt.Sprintf(msgInvalidArguments, ToolInspectSlide, err))
	}
	return t.InspectSlide(ctx, file, aspect).Output()
}

func (t *Toolkit) callInspectManuscript(ctx context.Context, args Arguments) Output {
	file, err := args.RequiredString("md_file")
	if err != nil {
		return DataOutput(ManuscriptOutcome{Error: fmt.Sprintf(msgInvalidArguments, ToolInspectManuscript, err)})
	}
	page, err := args.Int("page_id", 1)
	if err != nil {
		return DataOutput(ManuscriptOutcome{Error: fmt.Sprintf(msgInvalidArguments, ToolInspectManuscript, err)})
	}
	return DataOutput(t.InspectManuscript(ctx, file, page))
}

// guard turns a panic inside a tool into a text output.
func (t *Toolkit) guard(name string, fn func(context.Context, Arguments) Output) func(context.Context, Arguments) Output {
	return func(ctx context.Context, args Arguments) (out Output) {
		defer func() {
			if r := recover(); r != nil {
				t.logger.Error("tool panicked", "tool", name, "panic", r)
				out = TextOutput(fmt.Sprintf(msgInternalFailure, name, r))
			}
		}()
		if args == nil {
			args = Arguments{}
		}
		return fn(ctx, args)
	}
}

// causeOf strips the sentinel prefix from a wrapped error message.
func causeOf(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func aspectRatioNames() []string {
	names := make([]string, len(AspectRatios))
	for i, a := range AspectRatios {
		names[i] = string(a)
	}
	return names
}
