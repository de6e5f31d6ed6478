package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/agriassist-cli/internal/logging"
	"github.com/KaramelBytes/agriassist-cli/internal/store"
)

// ErrFarmNotFound reports advisories requested for an unknown farm.
var ErrFarmNotFound = errors.New("farm profile not found")

// Store is the persistence the engine needs.
type Store interface {
	GetFarm(ctx context.Context, id uint) (*store.FarmProfile, error)
	AddAdvisories(ctx context.Context, farmID uint, category string, messages []string) ([]store.AdvisoryLog, error)
}

// Counter receives the number of messages generated per category.
type Counter interface {
	Advisories(category string, n int)
}

// Inputs selects which advisory sections run. Only provided sections are
// evaluated; an empty Weather, Soil or Market counts as not provided.
type Inputs struct {
	Weather      *Weather `json:"weather_data,omitempty"`
	Soil         *Soil    `json:"soil_data,omitempty"`
	Yield        *float64 `json:"yield_model_output,omitempty"`
	Market       *Market  `json:"market_data,omitempty"`
	HealthStatus string   `json:"health_status,omitempty"`
}

// Engine evaluates the rules for a farm and stores every message.
type Engine struct {
	store   Store
	logger  *slog.Logger
	counter Counter
}

// Option customizes an Engine.
type Option func(*Engine)

// WithCounter attaches a metrics counter.
func WithCounter(c Counter) Option {
	return func(e *Engine) { e.counter = c }
}

// NewEngine returns an Engine over s.
func NewEngine(s Store, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{store: s, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

type section struct {
	category string
	messages func(farm *store.FarmProfile) []string
}

// GenerateAll runs the weather, soil, yield, market and crop health rules
// whose inputs are present and returns the messages by category.
func (e *Engine) GenerateAll(ctx context.Context, farmID uint, in Inputs) (map[string][]string, error) {
	var sections []section
	if in.Weather.provided() {
		w := *in.Weather
		sections = append(sections, section{store.CategoryWeather, func(*store.FarmProfile) []string { return WeatherAdvice(w) }})
	}
	if in.Soil.provided() {
		s := *in.Soil
		sections = append(sections, section{store.CategorySoil, func(*store.FarmProfile) []string { return SoilAdvice(s) }})
	}
	if in.Yield != nil {
		y := *in.Yield
		sections = append(sections, section{store.CategoryYield, func(f *store.FarmProfile) []string { return YieldForecast(f.CropType, y) }})
	}
	if in.Market.provided() {
		m := *in.Market
		sections = append(sections, section{store.CategoryMarket, func(f *store.FarmProfile) []string { return MarketInsight(f.CropType, m) }})
	}
	if in.HealthStatus != "" {
		h := in.HealthStatus
		sections = append(sections, section{store.CategoryCropHealth, func(*store.FarmProfile) []string { return CropHealthAdvice(h) }})
	}
	return e.run(ctx, farmID, sections)
}

// OptimizeResources runs the irrigation and fertilizer planners.
func (e *Engine) OptimizeResources(ctx context.Context, farmID uint, w *Weather, s *Soil) (map[string][]string, error) {
	var sections []section
	if w.provided() {
		wv := *w
		sections = append(sections, section{store.CategoryIrrigation, func(f *store.FarmProfile) []string { return IrrigationPlan(f.CropType, wv) }})
	}
	if s.provided() {
		sv := *s
		sections = append(sections, section{store.CategoryFertilizer, func(*store.FarmProfile) []string { return FertilizerPlan(sv) }})
	}
	return e.run(ctx, farmID, sections)
}

func (e *Engine) run(ctx context.Context, farmID uint, sections []section) (map[string][]string, error) {
	farm, err := e.store.GetFarm(ctx, farmID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrFarmNotFound, farmID)
		}
		return nil, err
	}
	out := make(map[string][]string, len(sections))
	for _, sec := range sections {
		msgs := sec.messages(farm)
		if _, err := e.store.AddAdvisories(ctx, farm.ID, sec.category, msgs); err != nil {
			return out, fmt.Errorf("save %s advisories: %w", sec.category, err)
		}
		if e.counter != nil {
			e.counter.Advisories(sec.category, len(msgs))
		}
		out[sec.category] = msgs
	}
	e.logger.InfoContext(ctx, "advisories generated", "farm_id", farm.ID, "categories", len(out))
	return out, nil
}
