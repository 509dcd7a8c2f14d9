package list

import (
	"context"
	"strings"
	"sync"
	"time"

	"notenav/internal/config"
	"notenav/internal/log"
	"notenav/internal/notify"
	"notenav/internal/ops"
	"notenav/internal/records"
	"notenav/internal/search"
	"notenav/pkg/types"
)

// Phase is the projection session's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseComputing
	PhaseSearchPending // waiting on the external ranked search call
	PhaseReady
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseComputing:
		return "computing"
	case PhaseSearchPending:
		return "search-pending"
	case PhaseReady:
		return "ready"
	}
	return "idle"
}

// Deps wires the engine to its collaborators. Collector, Records, and
// Config are required; Ranked, Coordinator, and OnUpdate are optional.
type Deps struct {
	Collector   Collector
	Records     *records.Store
	Ranked      search.Provider
	Coordinator *ops.Coordinator
	Config      *config.Config

	// OnUpdate is invoked with the fresh model after every reactive
	// recompute.
	OnUpdate func(*types.ListModel)

	// Now overrides the clock, used by tests for date bucketing.
	Now func() time.Time
}

// Engine is one view session of the list projection. All derived state
// is owned by the session and never shared across sessions.
type Engine struct {
	mu   sync.Mutex
	deps Deps

	sel      types.Selection
	rawQuery string
	query    search.Query

	phase Phase

	// Ranked-search consumption state: results are accepted only while
	// their token is still newest; stale ones are dropped silently.
	searchToken   uint64
	pendingQuery  string
	resolvedQuery string
	resolvedHits  []search.Hit

	model     *types.ListModel
	refresher *refresher
	unsubs    []func()
	closed    bool
}

// NewEngine creates a projection session and subscribes it to the
// record store's change stream and the coordinator's activity edges.
func NewEngine(deps Deps) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	delay := time.Duration(deps.Config.Settings.CoalesceDelayMs) * time.Millisecond
	e := &Engine{deps: deps, phase: PhaseIdle}
	e.refresher = newRefresher(delay, e.recompute)

	if deps.Records != nil {
		e.unsubs = append(e.unsubs, deps.Records.Subscribe(e.handleChange))
	}
	if deps.Coordinator != nil {
		e.unsubs = append(e.unsubs, deps.Coordinator.Subscribe(func(kind ops.Kind, active bool) {
			if kind != ops.KindMoveFiles && kind != ops.KindDeleteFiles {
				return
			}
			if active {
				e.refresher.Suppress()
			} else {
				e.refresher.Release()
			}
		}))
	}
	return e
}

// SetSelection switches the session's scope and re-derives immediately.
func (e *Engine) SetSelection(sel types.Selection) {
	e.mu.Lock()
	e.sel = sel
	// A new scope invalidates any in-flight or resolved search.
	e.searchToken++
	e.pendingQuery = ""
	e.resolvedQuery = ""
	e.resolvedHits = nil
	e.mu.Unlock()
	e.recompute()
}

// SetQuery updates the live search query and re-derives immediately.
func (e *Engine) SetQuery(raw string) {
	e.mu.Lock()
	e.rawQuery = raw
	e.query = search.Parse(raw)
	e.mu.Unlock()
	e.recompute()
}

// Selection returns the current scope.
func (e *Engine) Selection() types.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel
}

// Phase returns the session's current state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Model returns the last computed model, nil before the first pass.
func (e *Engine) Model() *types.ListModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// Project recomputes synchronously and returns the fresh model.
func (e *Engine) Project() *types.ListModel {
	e.recompute()
	return e.Model()
}

// Refresh requests a coalesced recompute, used on settings or profile
// changes.
func (e *Engine) Refresh() {
	e.refresher.Request()
}

// HandleFileEvent applies the live-sync contract to one file-system
// event: structural events always invalidate the base set; modifies
// only under a modified-time sort for in-scope files; metadata changes
// always refresh a tag view but only in-scope paths for a folder view.
func (e *Engine) HandleFileEvent(ev notify.Event) {
	e.mu.Lock()
	sel := e.sel
	sortOpt := e.deps.Config.SortFor(sel)
	e.mu.Unlock()

	switch {
	case ev.Kind.Structural():
		e.refresher.Request()
	case ev.Kind == notify.EventModify:
		if sortOpt.ByModified() && InScope(sel, ev.Path, e.deps.Records.Tags) {
			e.refresher.Request()
		}
	case ev.Kind == notify.EventMetadata:
		e.requestIfRelevant(sel, ev.Path)
	}
}

// Pump consumes a notifier channel until it closes.
func (e *Engine) Pump(events <-chan notify.Event) {
	for ev := range events {
		e.HandleFileEvent(ev)
	}
}

// Close tears the session down: subscriptions released, timers stopped.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	e.refresher.Stop()
}

// handleChange reacts to record-store content changes. Tag changes can
// alter search results and tag-scope membership, so they always
// schedule a refresh. Metadata changes refresh a tag view
// unconditionally (membership can change from metadata alone) but only
// in-scope paths for a folder view.
func (e *Engine) handleChange(c records.Change) {
	e.mu.Lock()
	sel := e.sel
	e.mu.Unlock()

	if c.Fields.Has(records.FieldTags) {
		e.refresher.Request()
		return
	}
	if c.Fields.Has(records.FieldMetadata) {
		e.requestIfRelevant(sel, c.Path)
	}
}

func (e *Engine) requestIfRelevant(sel types.Selection, path string) {
	switch sel.Kind {
	case types.SelectTag:
		e.refresher.Request()
	case types.SelectFolder:
		if InScope(sel, path, e.deps.Records.Tags) {
			e.refresher.Request()
		}
	}
}

// recompute runs the full pipeline synchronously; the external ranked
// search call is the only suspension point and runs as its own task.
func (e *Engine) recompute() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseComputing

	cfg := e.deps.Config
	sel := e.sel
	sortOpt := cfg.SortFor(sel)

	base := e.deps.Collector.Collect(sel, sortOpt, cfg.Settings.ShowHiddenItems)
	files, meta, pending := e.resolveSearchLocked(base)
	flags := e.computeFlagsLocked(files, meta)

	pins, rest := partitionPins(files, cfg.PinnedFor(sel.Kind), sel, cfg.Settings.PinExactFolderOnly)
	mode := cfg.GroupFor(sel)
	items := assemble(pins, rest, mode, sel, sortOpt, e.deps.Now(), flags)

	model := finalize(items)
	e.model = model
	if pending {
		e.phase = PhaseSearchPending
	} else {
		e.phase = PhaseReady
	}
	onUpdate := e.deps.OnUpdate
	e.mu.Unlock()

	if onUpdate != nil {
		onUpdate(model)
	}
}

// resolveSearchLocked applies the search stage to the base set. Called
// with e.mu held. Returns the filtered files, their search metadata,
// and whether an external call is still pending.
func (e *Engine) resolveSearchLocked(base []*types.File) ([]*types.File, map[string]*types.SearchMeta, bool) {
	raw := strings.TrimSpace(e.rawQuery)
	if raw == "" {
		return base, nil, false
	}

	if e.deps.Ranked != nil && e.deps.Ranked.Available() {
		if e.resolvedQuery == raw {
			return e.intersectHitsLocked(base)
		}
		// Pending or stale: never show superseded results; present an
		// empty set until the newest query resolves.
		if e.pendingQuery != raw {
			e.searchToken++
			e.pendingQuery = raw
			go e.runSearch(e.searchToken, raw)
		}
		return nil, nil, true
	}

	if e.query.Empty() {
		return base, nil, false
	}
	var filtered []*types.File
	meta := make(map[string]*types.SearchMeta)
	terms := e.query.Terms()
	for _, f := range base {
		nameLower := strings.ToLower(f.Name())
		pathLower := strings.ToLower(f.Path)
		path := f.Path
		if !e.query.Match(nameLower, pathLower, f.Ext(), func() []string { return e.deps.Records.Tags(path) }) {
			continue
		}
		filtered = append(filtered, f)
		if len(terms) > 0 {
			meta[f.Path] = &types.SearchMeta{Terms: terms, Spans: e.query.NameSpans(nameLower)}
		}
	}
	return filtered, meta, false
}

// intersectHitsLocked keeps the resolved hits that are members of the
// base set, preserving external rank order.
func (e *Engine) intersectHitsLocked(base []*types.File) ([]*types.File, map[string]*types.SearchMeta, bool) {
	byPath := make(map[string]*types.File, len(base))
	for _, f := range base {
		byPath[f.Path] = f
	}
	var files []*types.File
	meta := make(map[string]*types.SearchMeta)
	for i := range e.resolvedHits {
		hit := &e.resolvedHits[i]
		f, ok := byPath[hit.Path]
		if !ok {
			continue
		}
		files = append(files, f)
		meta[hit.Path] = hit.Meta()
	}
	return files, meta, false
}

// runSearch performs the external ranked call. The result is consumed
// only if its token is still newest; a failure resolves the query as an
// empty set since search only narrows an always-available base list.
func (e *Engine) runSearch(token uint64, raw string) {
	hits, err := e.deps.Ranked.Search(context.Background(), raw)
	if err != nil {
		log.With(log.F("query", raw), log.F("error", err)).Warn("ranked search failed, treating as empty")
		hits = nil
	}

	e.mu.Lock()
	if token != e.searchToken {
		e.mu.Unlock()
		return
	}
	e.resolvedQuery = raw
	e.resolvedHits = hits
	if e.pendingQuery == raw {
		e.pendingQuery = ""
	}
	e.mu.Unlock()

	e.recompute()
}

// computeFlagsLocked precomputes the per-file item flags. Called with
// e.mu held.
func (e *Engine) computeFlagsLocked(files []*types.File, meta map[string]*types.SearchMeta) map[string]itemFlags {
	flags := make(map[string]itemFlags, len(files))
	showHidden := e.deps.Config.Settings.ShowHiddenItems
	overlay, _ := e.deps.Collector.(*StoreCollector)
	for _, f := range files {
		fl := itemFlags{
			hasTags: len(e.deps.Records.Tags(f.Path)) > 0,
			search:  meta[f.Path],
		}
		if showHidden && overlay != nil {
			fl.hiddenShown = overlay.WouldHide(f)
		}
		flags[f.Path] = fl
	}
	return flags
}

// finalize builds the model's lookup indexes from the item sequence.
func finalize(items []types.ListItem) *types.ListModel {
	model := &types.ListModel{
		Items:      items,
		ListIndex:  make(map[string]int),
		FileIndex:  make(map[string]int),
		SearchMeta: make(map[string]*types.SearchMeta),
	}
	for i := range model.Items {
		item := &model.Items[i]
		if item.Kind != types.ItemFile {
			continue
		}
		item.FileIndex = len(model.Files)
		model.ListIndex[item.Key] = i
		model.FileIndex[item.Key] = item.FileIndex
		model.Files = append(model.Files, item.File)
		if item.Search != nil {
			model.SearchMeta[item.Key] = item.Search
		}
	}
	return model
}
