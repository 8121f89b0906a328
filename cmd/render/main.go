package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/flexprice/docforge/internal/api/dto"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/template"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
	"github.com/flexprice/docforge/internal/watermark"
	jsoniter "github.com/json-iterator/go"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	time.Local = time.UTC
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	common := []cli.Flag{
		&cli.StringFlag{Name: "renderer", Value: string(types.RendererProgrammatic), Usage: "programmatic or capture"},
		&cli.StringFlag{Name: "tier", Value: string(types.TierFree), Usage: "free or premium"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: ".", Usage: "output directory"},
	}

	return &cli.App{
		Name:  "render",
		Usage: "render financial document payloads to PDF",
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "render one JSON payload",
				ArgsUsage: "<payload.json>",
				Flags:     common,
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("exactly one payload file is required", 2)
					}
					r, err := newRunner(c)
					if err != nil {
						return err
					}
					res := r.renderFile(c.Context, c.Args().First())
					r.report(res)
					if res.Err != nil {
						return cli.Exit("", 1)
					}
					return nil
				},
			},
			{
				Name:      "batch",
				Usage:     "render every *.json payload in a directory",
				ArgsUsage: "<dir>",
				Flags: append(common,
					&cli.IntFlag{Name: "concurrency", Aliases: []string{"c"}, Value: runtime.NumCPU(), Usage: "parallel renders"},
				),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("exactly one directory is required", 2)
					}
					r, err := newRunner(c)
					if err != nil {
						return err
					}
					files, err := filepath.Glob(filepath.Join(c.Args().First(), "*.json"))
					if err != nil {
						return err
					}
					results := r.renderAll(c.Context, files, c.Int("concurrency"))
					failed := 0
					for _, res := range results {
						r.report(res)
						if res.Err != nil {
							failed++
						}
					}
					r.log.Infow("batch finished", "files", len(results), "failed", failed)
					if failed > 0 {
						return cli.Exit(fmt.Sprintf("%d of %d documents failed", failed, len(results)), 1)
					}
					return nil
				},
			},
		},
	}
}

// runner holds the render stack built from flags and configuration
type runner struct {
	renderer  pdfgen.Renderer
	templates template.Registry
	validator *validation.Validator
	tier      types.Tier
	outDir    string
	log       *logger.Logger
}

type fileResult struct {
	Path   string
	Output string
	Pages  int
	Err    error
}

func newRunner(c *cli.Context) (*runner, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		cfg = config.GetDefaultConfig()
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	renderers, err := buildRenderers(cfg, log)
	if err != nil {
		return nil, err
	}
	renderer, err := renderers.Get(types.RendererKind(c.String("renderer")))
	if err != nil {
		return nil, err
	}

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	return &runner{
		renderer:  renderer,
		templates: template.NewRegistry(),
		validator: validation.New(cfg.Render.MaxLogoBytes),
		tier:      types.ParseTier(strings.ToLower(c.String("tier"))),
		outDir:    outDir,
		log:       log,
	}, nil
}

func buildRenderers(cfg *config.Configuration, log *logger.Logger) (*pdfgen.Renderers, error) {
	builder := layout.NewBuilder(layout.NewMeasurer())
	policy := watermark.NewPolicy(cfg)
	capture, err := pdfgen.NewCaptureRenderer(cfg, builder, policy, log)
	if err != nil {
		return nil, err
	}
	return &pdfgen.Renderers{
		Programmatic: pdfgen.NewProgrammaticRenderer(cfg, builder, policy, log),
		Capture:      capture,
	}, nil
}

// renderAll renders files with at most n in flight. Results keep the order
// of files.
func (r *runner) renderAll(ctx context.Context, files []string, n int) []fileResult {
	sort.Strings(files)
	if n < 1 {
		n = 1
	}
	p := pool.NewWithResults[fileResult]().WithMaxGoroutines(n)
	for _, f := range files {
		p.Go(func() fileResult {
			return r.renderFile(ctx, f)
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func (r *runner) renderFile(ctx context.Context, path string) fileResult {
	res := fileResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	var payload dto.DocumentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		res.Err = ierr.WithError(err).
			WithHintf("%s is not a valid document payload", filepath.Base(path)).
			Mark(ierr.ErrValidation)
		return res
	}

	doc := payload.ToDocument()
	if errs := r.validator.Validate(doc); len(errs) > 0 {
		res.Err = errs
		return res
	}

	out, err := r.renderer.Render(ctx, &pdfgen.Request{
		Document: doc,
		Template: r.templates.Get(doc.TemplateID),
		Tier:     r.tier,
	})
	if err != nil {
		res.Err = err
		return res
	}

	res.Output = filepath.Join(r.outDir, out.Filename)
	res.Pages = out.Pages
	if err := os.WriteFile(res.Output, out.Data, 0o644); err != nil {
		res.Err = err
	}
	return res
}

func (r *runner) report(res fileResult) {
	if res.Err != nil {
		r.log.Errorw("render failed", "file", res.Path, "error", res.Err)
		return
	}
	r.log.Infow("rendered", "file", res.Path, "output", res.Output, "pages", res.Pages)
}
