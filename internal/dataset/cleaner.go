package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
)

// Run outcomes reported to a Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeLoadError    = "load_error"
	OutcomeComputeError = "compute_error"
	OutcomePersistError = "persist_error"
	OutcomeCancelled    = "cancelled"
)

// Recorder receives counters about cleaning runs.
type Recorder interface {
	CleanRun(kind, outcome string)
	CleanRows(kind, stage string, n int)
}

type nopRecorder struct{}

func (nopRecorder) CleanRun(string, string)       {}
func (nopRecorder) CleanRows(string, string, int) {}

// Option customizes a Cleaner.
type Option func(*Cleaner)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cleaner) {
		if r != nil {
			c.recorder = r
		}
	}
}

// Cleaner runs the per-kind cleaning recipes. It holds no mutable state and
// may be shared.
type Cleaner struct {
	cfg      Config
	logger   *slog.Logger
	recorder Recorder
}

// NewCleaner returns a Cleaner for cfg. A nil logger discards output.
func NewCleaner(cfg Config, logger *slog.Logger, opts ...Option) *Cleaner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Cleaner{cfg: cfg, logger: logger, recorder: nopRecorder{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns the locations the Cleaner reads from and writes to.
func (c *Cleaner) Config() Config { return c.cfg }

// Weather cleans the weather dataset. Failures are logged and yield an empty
// table, except write failures which still return the cleaned rows.
func (c *Cleaner) Weather(ctx context.Context, path string, save bool) dataframe.DataFrame {
	return c.run(ctx, Weather, path, save)
}

// Soil cleans the soil dataset.
func (c *Cleaner) Soil(ctx context.Context, path string, save bool) dataframe.DataFrame {
	return c.run(ctx, Soil, path, save)
}

// CropYield cleans the crop yield dataset.
func (c *Cleaner) CropYield(ctx context.Context, path string, save bool) dataframe.DataFrame {
	return c.run(ctx, CropYield, path, save)
}

// Market cleans the market prices dataset.
func (c *Cleaner) Market(ctx context.Context, path string, save bool) dataframe.DataFrame {
	return c.run(ctx, Market, path, save)
}

// Run is the swallowing entry point for any kind.
func (c *Cleaner) Run(ctx context.Context, kind Kind, path string, save bool) dataframe.DataFrame {
	return c.run(ctx, kind, path, save)
}

func (c *Cleaner) run(ctx context.Context, kind Kind, path string, save bool) dataframe.DataFrame {
	df, err := c.Clean(ctx, kind, path, save)
	if err == nil {
		return df
	}
	if errors.Is(err, ErrPersist) {
		c.logger.Error(fmt.Sprintf("Error saving %s data", kind.Label()), "kind", kind, "error", err)
		return df
	}
	c.logger.Error(fmt.Sprintf("Error preprocessing %s data", kind.Label()), "kind", kind, "error", err)
	return dataframe.DataFrame{}
}

// CropHealth is a placeholder for image preprocessing: it only checks that
// the image folder exists.
func (c *Cleaner) CropHealth(ctx context.Context, dir string) {
	if dir == "" {
		dir = c.cfg.CropImagesDir
	}
	if !utils.DirExists(dir) {
		c.logger.WarnContext(ctx, "Crop images folder not found.", "dir", dir)
		return
	}
	c.logger.InfoContext(ctx, "Crop health image preprocessing not implemented; folder found.", "dir", dir)
}

// CleanAll cleans every kind from its default input path, one after another.
// A failing kind yields an empty table without affecting the others. Kinds not
// reached before ctx is cancelled are absent from the result.
func (c *Cleaner) CleanAll(ctx context.Context, save bool) map[Kind]dataframe.DataFrame {
	out := make(map[Kind]dataframe.DataFrame, len(Kinds()))
	for _, k := range Kinds() {
		if ctx.Err() != nil {
			c.logger.Warn("cleaning cancelled", "remaining_from", k, "error", ctx.Err())
			return out
		}
		out[k] = c.run(ctx, k, "", save)
	}
	c.CropHealth(ctx, "")
	return out
}

// Clean runs the recipe for kind and reports failures. An empty path means the
// configured input for kind. When saving fails the cleaned table is returned
// together with an error wrapping ErrPersist.
func (c *Cleaner) Clean(ctx context.Context, kind Kind, path string, save bool) (dataframe.DataFrame, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return dataframe.DataFrame{}, err
	}
	if err := ctx.Err(); err != nil {
		c.recorder.CleanRun(string(kind), OutcomeCancelled)
		return dataframe.DataFrame{}, err
	}
	if path == "" {
		path = c.cfg.InputPath(kind)
	}
	log := c.logger.With("kind", string(kind), "run_id", uuid.NewString())

	df, err := Load(path, c.cfg.Sheet)
	if err != nil {
		c.recorder.CleanRun(string(kind), OutcomeLoadError)
		return dataframe.DataFrame{}, err
	}
	log.InfoContext(ctx, fmt.Sprintf("%s dataset loaded: %d rows, %d cols", kind.Label(), df.Nrow(), df.Ncol()), "path", path)
	c.recorder.CleanRows(string(kind), "loaded", df.Nrow())

	df, err = apply(ctx, log, RecipeFor(kind), df)
	if err != nil {
		c.recorder.CleanRun(string(kind), OutcomeComputeError)
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", kind, err)
	}
	c.recorder.CleanRows(string(kind), "kept", df.Nrow())

	if save {
		out := c.cfg.OutputPath(kind)
		if err := Persist(df, out); err != nil {
			c.recorder.CleanRun(string(kind), OutcomePersistError)
			return df, err
		}
		log.InfoContext(ctx, fmt.Sprintf("Cleaned %s data saved to %s", kind.Label(), out), "rows", df.Nrow())
	}
	c.recorder.CleanRun(string(kind), OutcomeOK)
	return df, nil
}

// apply runs the recipe steps in their fixed order: drop missing rows, parse
// dates, encode categories, normalize, derive.
func apply(ctx context.Context, log *slog.Logger, r Recipe, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	before := df.Nrow()
	df = DropMissing(df)
	if df.Err != nil {
		return df, fmt.Errorf("drop missing: %w", df.Err)
	}
	if dropped := before - df.Nrow(); dropped > 0 {
		log.DebugContext(ctx, "dropped rows with missing values", "dropped", dropped)
	}

	if r.DateColumn != "" && HasColumn(df, r.DateColumn) {
		before = df.Nrow()
		df = ParseDates(df, r.DateColumn)
		if df.Err != nil {
			return df, fmt.Errorf("parse dates: %w", df.Err)
		}
		if dropped := before - df.Nrow(); dropped > 0 {
			log.WarnContext(ctx, "dropped rows with unparsable dates", "column", r.DateColumn, "dropped", dropped)
		}
	}

	for _, col := range r.Encode {
		if !HasColumn(df, col) {
			continue
		}
		df = LabelEncode(df, col)
		if df.Err != nil {
			return df, fmt.Errorf("encode %s: %w", col, df.Err)
		}
		log.InfoContext(ctx, fmt.Sprintf("Encoded %s into %s_encoded.", col, col))
	}

	if len(r.Normalize) > 0 {
		var present []string
		for _, col := range r.Normalize {
			if HasColumn(df, col) {
				present = append(present, col)
			}
		}
		if len(present) > 0 {
			var err error
			df, err = StandardScale(df, present...)
			if err != nil {
				return df, fmt.Errorf("normalize: %w", err)
			}
			log.InfoContext(ctx, "Features normalized.", "columns", present)
		}
	}

	if r.Ratio != nil && HasColumn(df, r.Ratio.Numerator) && HasColumn(df, r.Ratio.Denominator) {
		var err error
		df, err = RatioFeature(df, *r.Ratio)
		if err != nil {
			return df, fmt.Errorf("derive %s: %w", r.Ratio.Name, err)
		}
		log.InfoContext(ctx, fmt.Sprintf("Feature engineered: %s.", r.Ratio.Name))
	}
	return df, nil
}

// PrepareForEDA drops rows with missing values and exact duplicate rows.
func PrepareForEDA(df dataframe.DataFrame) dataframe.DataFrame {
	return DropDuplicates(DropMissing(df))
}
