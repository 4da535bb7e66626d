package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/chain"
	"github.com/edgepunks/edgepunks/pkg/observability"
)

// ErrBatchFailed is returned alongside a [Report] when at least one token of
// the batch failed.
var ErrBatchFailed = stderrors.New("one or more tokens failed")

// MetadataSource resolves a token to its on-chain metadata.
// [*chain.Client] implements it.
type MetadataSource interface {
	Metadata(ctx context.Context, tokenID string) (*chain.Metadata, error)
}

// Event reports one finished token to a progress callback.
type Event struct {
	TokenID string
	Err     error
	Done    int
	Total   int
}

// Failure is a token that could not be processed.
type Failure struct {
	TokenID string
	Err     error
}

// Report summarizes a batch.
type Report struct {
	RunID     string
	Total     int
	Succeeded []string
	Failed    []Failure
	Duration  time.Duration
}

// Err returns nil when every token succeeded, or an error wrapping
// [ErrBatchFailed] that names the failure count.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", ErrBatchFailed, len(r.Failed), r.Total)
}

// Runner executes batches. It holds no per-batch state, so one Runner can
// serve several batches concurrently.
type Runner struct {
	Renderer *artwork.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil renderer uses [artwork.NewRenderer] and a
// nil logger uses log.Default().
func NewRunner(renderer *artwork.Renderer, logger *log.Logger) *Runner {
	if renderer == nil {
		renderer = artwork.NewRenderer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Renderer: renderer, Logger: logger}
}

// Generate renders every requested token from src into sink.
func (r *Runner) Generate(ctx context.Context, src Source, sink Sink, opts GenerateOptions) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	req := artwork.Request{ImageSize: opts.ImageSize, Transparent: opts.Transparent}

	return r.run(ctx, "generate", opts.TokenIDs, opts.Concurrency, opts.Progress, func(ctx context.Context, logger *log.Logger, id string) error {
		return r.generateOne(ctx, logger, src, sink, id, req)
	})
}

func (r *Runner) generateOne(ctx context.Context, logger *log.Logger, src Source, sink Sink, id string, req artwork.Request) (err error) {
	start := time.Now()
	kind := ""
	observability.Render().OnRenderStart(ctx, id)
	defer func() {
		observability.Render().OnRenderComplete(ctx, id, kind, time.Since(start), err)
	}()

	doc, err := src.Document(ctx, id)
	if err != nil {
		return err
	}
	req.TokenID = id
	res, err := r.Renderer.Render(ctx, doc, req)
	if err != nil {
		return err
	}
	kind = classificationKind(res.Classification)

	for _, out := range res.Outputs {
		if err := sink.Write(ctx, id, out); err != nil {
			return fmt.Errorf("write %s: %w", out.Format, err)
		}
		logger.Debug("wrote image", "token", id, "kind", kind, "format", out.Format, "bytes", len(out.Data))
	}
	return nil
}

// Pull fetches metadata for every requested token and writes the SVG to
// svgSink and the metadata without image fields to metaSink.
func (r *Runner) Pull(ctx context.Context, src MetadataSource, svgSink, metaSink Sink, opts PullOptions) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return r.run(ctx, "pull", opts.TokenIDs, opts.Concurrency, opts.Progress, func(ctx context.Context, logger *log.Logger, id string) error {
		meta, err := src.Metadata(ctx, id)
		if err != nil {
			return err
		}
		svg, err := meta.SVG()
		if err != nil {
			return err
		}
		stripped, err := meta.WithoutImages().MarshalJSON()
		if err != nil {
			return err
		}
		if err := svgSink.Write(ctx, id, artwork.Output{Format: "svg", Data: []byte(svg)}); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		if err := metaSink.Write(ctx, id, artwork.Output{Format: "json", Data: stripped}); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
		logger.Debug("pulled token", "token", id, "svg_bytes", len(svg))
		return nil
	})
}

type task func(ctx context.Context, logger *log.Logger, id string) error

// run fans ids out over a pool of size limit. Task errors are recorded, never
// returned to the group, so one failure does not cancel its siblings.
func (r *Runner) run(ctx context.Context, op string, ids []string, limit int, progress func(Event), fn task) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Total: len(ids)}
	logger := r.Logger.With("run", report.RunID[:8])
	logger.Info(op+" started", "tokens", len(ids), "concurrency", limit)
	start := time.Now()

	var (
		mu   sync.Mutex
		done int
	)
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := fn(ctx, logger, id)
			if err != nil {
				logger.Error("failed to "+op, "token", id, "err", err)
			}

			mu.Lock()
			done++
			if err != nil {
				report.Failed = append(report.Failed, Failure{TokenID: id, Err: err})
			} else {
				report.Succeeded = append(report.Succeeded, id)
			}
			ev := Event{TokenID: id, Err: err, Done: done, Total: len(ids)}
			mu.Unlock()

			if progress != nil {
				progress(ev)
			}
			return nil
		})
	}
	_ = g.Wait()
	report.Duration = time.Since(start)

	logger.Info(op+" finished",
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"duration", report.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, report.Err()
}

func classificationKind(c artwork.Classification) string {
	switch c.(type) {
	case artwork.Unique:
		return "unique"
	case artwork.Procedural:
		return "procedural"
	default:
		return ""
	}
}
