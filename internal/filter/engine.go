package filter

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/property"
)

// Default debounce delays. Value sliders emit continuous drag ticks, so they
// get a long quiet period; category toggles are discrete clicks and only need
// enough delay to coalesce a rapid "select several" burst.
const (
	DefaultValueDelay    = time.Second
	DefaultCategoryDelay = 50 * time.Millisecond
)

// Options configures an Engine.
type Options struct {
	ValueDelay    time.Duration
	CategoryDelay time.Duration
	// OnCommit is invoked after each committed filter change with the new
	// snapshot. Optional. Called outside the engine lock.
	OnCommit func(Snapshot)
}

// SliderPositions holds the derived slider positions for each field.
type SliderPositions struct {
	Capital      PositionRange `json:"capital"`
	Land         PositionRange `json:"land"`
	Improvements PositionRange `json:"improvements"`
}

// Snapshot is a read-only view of the filter state handed to the renderer.
// Live ranges reflect the most recent edit; the visible count reflects the
// most recent commit.
type Snapshot struct {
	SelectedCategories []string        `json:"selected_categories"`
	Mode               string          `json:"mode"`
	Bounds             FieldBounds     `json:"bounds"`
	Live               Ranges          `json:"live"`
	Committed          Ranges          `json:"committed"`
	Positions          SliderPositions `json:"positions"`
	VisibleCount       int             `json:"visible_count"`
	TotalRecords       int             `json:"total_records"`
}

// Engine is the single owner of filter state. All transitions go through the
// entry points OnDataLoaded, OnCategoryChange, and OnValueEdit; consumers
// read fully-committed snapshots via Snapshot and Visible, never a partially
// updated state.
type Engine struct {
	mu        sync.Mutex
	records   []property.Record
	selected  map[string]bool
	bounds    FieldBounds
	live      Ranges
	committed Ranges
	mode      Mode
	visible   []property.Record

	valueGate    *Gate
	categoryGate *Gate
	onCommit     func(Snapshot)
}

// NewEngine creates an engine in the empty state: no categories selected, all
// bounds [0, 0], nothing visible. It stays that way until OnDataLoaded.
func NewEngine(opts Options) *Engine {
	if opts.ValueDelay <= 0 {
		opts.ValueDelay = DefaultValueDelay
	}
	if opts.CategoryDelay <= 0 {
		opts.CategoryDelay = DefaultCategoryDelay
	}

	e := &Engine{
		selected: make(map[string]bool),
		onCommit: opts.OnCommit,
	}
	e.valueGate = NewGate(opts.ValueDelay, e.commitValues)
	e.categoryGate = NewGate(opts.CategoryDelay, e.commitCategories)
	return e
}

// Close cancels any pending commits.
func (e *Engine) Close() {
	e.valueGate.Stop()
	e.categoryGate.Stop()
}

// OnDataLoaded installs the full record set. All categories present in the
// data start selected, bounds and ranges reset to the full envelope, and the
// visible set is evaluated synchronously so the first snapshot is complete.
func (e *Engine) OnDataLoaded(records []property.Record) {
	e.valueGate.Stop()
	e.categoryGate.Stop()

	e.mu.Lock()
	e.records = records
	e.selected = make(map[string]bool)
	for _, rec := range records {
		if rec.PropertyType != "" {
			e.selected[rec.PropertyType] = true
		}
	}
	e.resetLocked()
	e.evaluateLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	zap.L().Info("filter: data loaded",
		zap.Int("records", len(records)),
		zap.Int("categories", len(snap.SelectedCategories)),
	)
	e.notify(snap)
}

// OnCategoryChange replaces the selected category set. Bounds are recomputed
// synchronously and both live and committed ranges reset to the new full
// bounds: switching categories abandons any prior value-range narrowing
// rather than attempting to rescale it. Evaluation of the visible set is
// debounced on the short category delay.
func (e *Engine) OnCategoryChange(categories []string) {
	// A category switch abandons any in-flight value commit: the ranges it
	// would have committed belong to the old bounds.
	e.valueGate.Stop()

	e.mu.Lock()
	e.selected = make(map[string]bool, len(categories))
	for _, c := range categories {
		if c != "" {
			e.selected[c] = true
		}
	}
	e.resetLocked()
	e.mu.Unlock()

	e.categoryGate.Touch()
}

// OnValueEdit applies a slider edit to the live ranges for instant display
// and (re)starts the value debounce. Only when the delay elapses with no
// further edit does the committed state take the live value.
func (e *Engine) OnValueEdit(field Field, r Range) {
	e.mu.Lock()
	r = e.bounds.Get(field).Clamp(r)
	e.live, e.mode = ApplyEdit(field, r, e.live)
	e.mu.Unlock()

	e.valueGate.Touch()
}

// Snapshot returns the current filter state for display.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Visible returns a copy of the visible record set from the most recent
// commit.
func (e *Engine) Visible() []property.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]property.Record, len(e.visible))
	copy(out, e.visible)
	return out
}

// commitValues promotes live ranges to committed and re-evaluates. Fired by
// the value gate.
func (e *Engine) commitValues() {
	e.mu.Lock()
	e.committed = e.live
	e.evaluateLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	zap.L().Debug("filter: value commit", zap.Int("visible", snap.VisibleCount))
	e.notify(snap)
}

// commitCategories re-evaluates after a category change. Committed ranges
// were already reset synchronously in OnCategoryChange.
func (e *Engine) commitCategories() {
	e.mu.Lock()
	e.evaluateLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	zap.L().Debug("filter: category commit",
		zap.Int("visible", snap.VisibleCount),
		zap.Int("categories", len(snap.SelectedCategories)),
	)
	e.notify(snap)
}

// resetLocked recomputes bounds from the current selection and resets live
// and committed ranges to the full envelope. Mode returns to components.
func (e *Engine) resetLocked() {
	e.bounds = ComputeBounds(e.records, e.selected)
	e.live = e.bounds.FullRanges()
	e.committed = e.live
	e.mode = ModeComponents
}

func (e *Engine) evaluateLocked() {
	e.visible = Evaluate(e.records, e.selected, e.committed)
}

func (e *Engine) snapshotLocked() Snapshot {
	cats := make([]string, 0, len(e.selected))
	for c := range e.selected {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	return Snapshot{
		SelectedCategories: cats,
		Mode:               e.mode.String(),
		Bounds:             e.bounds,
		Live:               e.live,
		Committed:          e.committed,
		Positions: SliderPositions{
			Capital:      RangeToPositions(e.live.Capital, e.bounds.Capital),
			Land:         RangeToPositions(e.live.Land, e.bounds.Land),
			Improvements: RangeToPositions(e.live.Improvements, e.bounds.Improvements),
		},
		VisibleCount: len(e.visible),
		TotalRecords: len(e.records),
	}
}

func (e *Engine) notify(snap Snapshot) {
	if e.onCommit != nil {
		e.onCommit(snap)
	}
}
