package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/pathway/internal/logging"
	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/balancer"
	"github.com/kingrea/pathway/internal/pathway/ge"
	"github.com/kingrea/pathway/internal/pathway/prereq"
	"github.com/kingrea/pathway/internal/pathway/resolver"
)

// Engine plans pathways over one immutable dataset.
type Engine struct {
	data      *pathway.Dataset
	prereqs   *prereq.Evaluator
	matcher   resolver.Matcher
	cache     *resolver.MatchCache
	electives ElectivePolicy
	deficit   bool
	observer  Observer
	logger    *logging.Logger
	clock     func() time.Time
	newID     func() string
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithMatcher sets the requirement-code fallback policy.
func WithMatcher(m resolver.Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithMatchCache shares requirement-code resolution across runs.
func WithMatchCache(cache *resolver.MatchCache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithElectives swaps the elective filler policy.
func WithElectives(policy ElectivePolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.electives = policy
		}
	}
}

// WithDeficitBlocks offers a block for every code a requirement group still
// needs each term instead of one block per group.
func WithDeficitBlocks(on bool) Option {
	return func(e *Engine) {
		e.deficit = on
	}
}

// WithObserver receives term and completion events.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observer = obs
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New wires an engine to a loaded dataset.
func New(data *pathway.Dataset, opts ...Option) (*Engine, error) {
	if data == nil || data.Catalog == nil {
		return nil, fmt.Errorf("pathway engine: dataset with catalog is required")
	}
	engine := &Engine{
		data:     data,
		prereqs:  prereq.New(data.Catalog),
		matcher:  resolver.ExactMatcher{},
		observer: nopObserver{},
		logger:   logging.NopLogger(),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.cache == nil {
		cache, err := resolver.NewMatchCache(resolver.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("pathway engine: %w", err)
		}
		engine.cache = cache
	}
	if engine.electives == nil {
		policy, err := NewGlobElectives(nil, DefaultElectiveExcludes, DefaultElectivePool)
		if err != nil {
			return nil, fmt.Errorf("pathway engine: %w", err)
		}
		engine.electives = policy
	}
	return engine, nil
}

// run bundles the per-run collaborators so Run stays readable.
type run struct {
	id       string
	req      Request
	settings Settings
	res      *resolver.Resolver
	state    *runState
	warned   map[string]struct{}
	warnings []error
	log      *logging.Logger
}

// Run plans terms until the state machine reaches a terminal status.
// Configuration problems (unknown source, target, or pattern) are returned
// as errors before any term is planned. Cancellation is checked between
// terms; a cancelled run returns its partial result with ctx.Err().
func (e *Engine) Run(ctx context.Context, req Request) (Result, error) {
	r, err := e.prepare(req)
	if err != nil {
		return Result{}, err
	}
	started := e.clock()
	r.log.Info("run started", "unit_ceiling", r.settings.UnitCeiling, "min_units", r.settings.MinTotalUnits)

	var status Status
	var reason ReasonCode
	var detail string
	for {
		if err := ctx.Err(); err != nil {
			result := e.finish(r, StatusActive, ReasonCancelled, err.Error(), started)
			return result, err
		}
		status, reason, detail = e.step(r)
		if status.Terminal() {
			break
		}
	}
	return e.finish(r, status, reason, detail, started), nil
}

func (e *Engine) prepare(req Request) (*run, error) {
	settings := req.Settings.withDefaults()
	if settings.UnitCeiling <= 0 {
		return nil, fmt.Errorf("pathway engine: unit ceiling must be positive")
	}
	art, ok := e.data.Articulation.Source(req.Source)
	if !ok {
		return nil, fmt.Errorf("pathway engine: no articulation for source %q", req.Source)
	}
	pattern, ok := e.data.Patterns.Pattern(req.Pattern)
	if !ok {
		return nil, fmt.Errorf("pathway engine: %w: %s", ge.ErrUnknownPattern, req.Pattern)
	}
	resOpts := []resolver.Option{resolver.WithMatcher(e.matcher), resolver.WithCache(e.cache)}
	if e.deficit {
		resOpts = append(resOpts, resolver.WithDeficitBlocks())
	}
	res, err := resolver.New(art, e.data.Requirements, req.Targets, e.data.Catalog, resOpts...)
	if err != nil {
		return nil, fmt.Errorf("pathway engine: %w", err)
	}
	req.Source = art.Source
	req.Pattern = pattern.ID
	req.Targets = res.Targets()
	id := e.newID()
	r := &run{
		id:       id,
		req:      req,
		settings: settings,
		res:      res,
		state:    newRunState(ge.New(e.data.Patterns, settings.UnitScale)),
		warned:   map[string]struct{}{},
		log:      e.logger.WithRun(id).WithTarget(art.Source, req.Targets, pattern.ID),
	}
	for _, diag := range e.data.Diagnostics {
		r.warn(diag)
	}
	for _, tag := range res.Unsatisfiable() {
		r.warn(fmt.Errorf("requirement group %s cannot be satisfied from %s articulation", tag, art.Source))
	}
	for _, approx := range res.ApproximateMatches() {
		r.warn(fmt.Errorf("approximate requirement match %s", approx))
	}
	return r, nil
}

// step plans and commits one term, returning StatusActive to continue.
func (e *Engine) step(r *run) (Status, ReasonCode, string) {
	st := r.state

	// 1. major candidates plus any prerequisite they still need
	st.majors = r.res.RemainingCandidates(st.completed)
	st.majors = append(st.majors, e.prereqs.MissingPrereqs(st.majors, st.completed)...)
	st.unmet = r.res.Unmet(st.completed)
	for _, w := range e.prereqs.Unknown(st.majors) {
		r.warn(w)
	}

	// 2. GE remaining expanded into placeholders
	geEval, err := st.tracker.Evaluate(r.req.Pattern)
	if err != nil {
		return StatusStalled, ReasonNoCandidates, err.Error()
	}
	geCands := expandGE(geEval.Remaining, st.completed, r.settings)

	// 3. termination
	majorDone := len(st.unmet) == 0
	geDone := geEval.Fulfilled()
	unitsMet := st.units >= r.settings.MinTotalUnits
	if majorDone && geDone && unitsMet {
		return StatusComplete, ReasonRequirementsMet, "major, GE, and unit floor satisfied"
	}

	// 4. unlockers ahead of eligible majors
	eligible := e.prereqs.Eligible(st.majors, st.completed)
	blocked := e.prereqs.Blocked(st.majors, st.completed)
	unlockers := e.prereqs.Unlockers(blocked, st.completed, r.settings.MaxUnlockers)
	pool := dedupe(append(unlockers, eligible...))

	// 5. elective filler once only the unit floor remains
	if majorDone && geDone {
		exclude := make(map[string]struct{}, len(pool))
		for _, c := range pool {
			exclude[c.ID] = struct{}{}
		}
		takeable := func(id string) bool { return e.prereqs.Takeable(id, st.completed) }
		geCands = append(geCands, e.electives.Fill(e.data.Catalog, st.completed, takeable, exclude)...)
	}

	// 6. anything left to take?
	pool = dedupe(append(pool, geCands...))
	if !hasUncompleted(pool, st.completed) {
		return StatusStalled, ReasonNoCandidates, stallDetail(st, blocked)
	}

	// 7. balance the term
	open := make(map[string]struct{}, len(st.unmet))
	for _, tag := range st.unmet {
		open[tag] = struct{}{}
	}
	sel := balancer.Select(balancer.Request{
		Pool:      pool,
		Completed: st.completed,
		Ceiling:   r.settings.UnitCeiling,
		Relevant:  relevantTo(open),
	})
	if len(sel.Courses) == 0 {
		return StatusStalled, ReasonNothingSelected, fmt.Sprintf("no candidate fits under %.1f units", r.settings.UnitCeiling)
	}

	// 8. commit
	before := len(st.completed)
	term := pathway.Term{Index: st.term, Label: fmt.Sprintf("%s %d", r.settings.TermLabel, st.term)}
	for _, c := range sel.Courses {
		st.completed.Add(c.ID)
		key, tags := creditTags(c, e.data.Catalog)
		st.tracker.AddCompletedCourse(c.ID, tags, c.Units)
		term.Courses = append(term.Courses, pathway.PlannedCourse{
			ID:       c.ID,
			Units:    c.Units,
			Kind:     c.Kind,
			Tags:     append([]string(nil), c.Tags...),
			Fulfills: key,
		})
		term.Units += c.Units
	}
	st.terms = append(st.terms, term)
	st.units += term.Units
	st.term++
	r.log.Debug("term committed", "term", term.Index, "units", term.Units, "courses", strings.Join(term.CourseIDs(), ", "), "pruned", len(sel.Pruned))
	e.observer.TermCommitted(r.id, term, st.units)

	// 9. progress and safety ceiling
	if len(st.completed) == before {
		return StatusStalled, ReasonNoProgress, "completed set unchanged"
	}
	if st.term > r.settings.MaxTerms {
		if e.done(r) {
			return StatusComplete, ReasonRequirementsMet, "major, GE, and unit floor satisfied"
		}
		return StatusSafetyAborted, ReasonTermCeiling, fmt.Sprintf("stopped after %d terms", r.settings.MaxTerms)
	}
	return StatusActive, "", ""
}

func (e *Engine) done(r *run) bool {
	st := r.state
	if st.units < r.settings.MinTotalUnits || !r.res.Satisfied(st.completed) {
		return false
	}
	fulfilled, err := st.tracker.IsFulfilled(r.req.Pattern)
	return err == nil && fulfilled
}

func (e *Engine) finish(r *run, status Status, reason ReasonCode, detail string, started time.Time) Result {
	st := r.state
	geEval, _ := st.tracker.Evaluate(r.req.Pattern)
	unmet := r.res.Unmet(st.completed)
	for _, rem := range geEval.Remaining {
		unmet = append(unmet, rem.ID)
	}
	plan := pathway.Plan{
		RunID:          r.id,
		Source:         r.req.Source,
		Targets:        append([]string(nil), r.req.Targets...),
		Pattern:        r.req.Pattern,
		Status:         string(status),
		Reason:         detail,
		Terms:          st.terms,
		TotalUnits:     st.units,
		OverTwoYears:   r.settings.TermsForTwoYears > 0 && len(st.terms) > r.settings.TermsForTwoYears,
		MeetsUnitFloor: st.units >= r.settings.MinTotalUnits,
		Unmet:          unmet,
		GeneratedAt:    e.clock(),
	}
	for _, w := range r.warnings {
		plan.Warnings = append(plan.Warnings, w.Error())
	}
	result := Result{
		Plan:       plan,
		Status:     status,
		Reason:     reason,
		Detail:     detail,
		Completed:  st.completed.Sorted(),
		Major:      r.res.Status(st.completed),
		GE:         geEval,
		Warnings:   r.warnings,
		StartedAt:  started,
		FinishedAt: plan.GeneratedAt,
	}
	r.log.Info("run finished", "status", string(status), "reason", string(reason), "terms", len(st.terms), "units", st.units)
	e.observer.RunFinished(result)
	return result
}

func (r *run) warn(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if _, seen := r.warned[msg]; seen {
		return
	}
	r.warned[msg] = struct{}{}
	r.warnings = append(r.warnings, err)
	r.log.Warn("diagnostic", "error", msg)
}

func relevantTo(open map[string]struct{}) func(pathway.Candidate) bool {
	return func(c pathway.Candidate) bool {
		if c.Kind != pathway.KindMajor && c.Kind != pathway.KindUnlocker {
			return true
		}
		if len(c.Tags) == 0 {
			return true
		}
		for _, tag := range c.Tags {
			if _, ok := open[tag]; ok {
				return true
			}
		}
		return false
	}
}

func dedupe(cands []pathway.Candidate) []pathway.Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]pathway.Candidate, 0, len(cands))
	for _, c := range cands {
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func hasUncompleted(pool []pathway.Candidate, completed pathway.CourseSet) bool {
	for _, c := range pool {
		if !completed.Has(c.ID) {
			return true
		}
	}
	return false
}

func stallDetail(st *runState, blocked []pathway.Candidate) string {
	if len(blocked) == 0 {
		if len(st.unmet) > 0 {
			return "no articulated course remains for " + strings.Join(st.unmet, ", ")
		}
		return "no eligible course remains"
	}
	ids := make([]string, 0, len(blocked))
	for _, c := range blocked {
		ids = append(ids, c.ID)
	}
	return "every remaining course is blocked: " + strings.Join(ids, ", ")
}
