// Package content keeps the in-memory mirror of the portfolio content and
// routes every admin write through the content store followed by a refresh.
package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"portfolio-service/logger"
	"portfolio-service/models"

	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Status is what views show next to the content.
type Status struct {
	State        State     `json:"state"`
	Error        string    `json:"error,omitempty"`
	FailedTables []string  `json:"failedTables,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Loading reports whether a refresh is in flight.
func (s Status) Loading() bool {
	return s.State == StateLoading
}

// LoadError is returned when no table could be fetched.
type LoadError struct {
	Tables map[models.Entity]error
}

func (e *LoadError) Error() string {
	if len(e.Tables) == 0 {
		return "load content: no tables loaded"
	}
	names := make([]string, 0, len(e.Tables))
	for entity := range e.Tables {
		names = append(names, string(entity))
	}
	sort.Strings(names)
	first := e.Tables[models.Entity(names[0])]
	return fmt.Sprintf("load content: all %d tables failed (%s): %v", len(names), strings.Join(names, ", "), first)
}

func (e *LoadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Tables))
	for _, err := range e.Tables {
		errs = append(errs, err)
	}
	return errs
}

type tables struct {
	profile      Profile
	experiences  []Experience
	education    []Education
	projects     []Project
	categories   []SkillCategory
	skills       []Skill
	testimonials []Testimonial
	hiddenGoals  []HiddenGoal
}

// Store mirrors the content store. Every successful write is followed by a
// full refresh, so readers see server-confirmed state. Concurrent refreshes
// are ordered by token: only the most recently issued one may apply.
type Store struct {
	source  Source
	log     *logger.Logger
	metrics storeMetrics

	token atomic.Uint64

	mu        sync.RWMutex
	data      tables
	state     State
	lastErr   error
	failed    []string
	updatedAt time.Time
}

func NewStore(source Source, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		source:  source,
		log:     log,
		metrics: newStoreMetrics(),
		state:   StateIdle,
		data:    emptyTables(),
	}
}

func emptyTables() tables {
	return tables{
		experiences:  []Experience{},
		education:    []Education{},
		projects:     []Project{},
		categories:   []SkillCategory{},
		skills:       []Skill{},
		testimonials: []Testimonial{},
		hiddenGoals:  []HiddenGoal{},
	}
}

// Load performs the initial fetch of every table.
func (s *Store) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh refetches every table concurrently and replaces each table that
// fetched successfully. A *LoadError is returned when every table failed.
// A refresh superseded by a newer one returns nil without applying.
func (s *Store) Refresh(ctx context.Context) error {
	token := s.token.Add(1)
	start := time.Now()

	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	result := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token.Load() {
		s.log.Debug("discarding stale content refresh", "token", token)
		s.metrics.recordRefresh(ctx, "stale", time.Since(start))
		return nil
	}

	s.failed = s.failed[:0]
	for _, entity := range models.Entities {
		if err, ok := result.errs[entity]; ok {
			s.failed = append(s.failed, string(entity))
			s.log.Warn("content table fetch failed", "table", entity, "error", err)
			s.metrics.recordTableFailure(ctx, string(entity))
		}
	}
	result.applyTo(&s.data)
	s.updatedAt = time.Now()

	if len(result.errs) == len(models.Entities) {
		loadErr := &LoadError{Tables: result.errs}
		s.state = StateError
		s.lastErr = loadErr
		s.metrics.recordRefresh(ctx, "error", time.Since(start))
		return loadErr
	}

	s.state = StateReady
	s.lastErr = nil
	s.metrics.recordRefresh(ctx, "ready", time.Since(start))
	return nil
}

type fetchResult struct {
	tables
	errs map[models.Entity]error
}

func (s *Store) fetch(ctx context.Context) *fetchResult {
	result := &fetchResult{errs: make(map[models.Entity]error)}
	var (
		group errgroup.Group
		mu    sync.Mutex
	)
	run := func(entity models.Entity, fn func() error) {
		group.Go(func() error {
			if err := fn(); err != nil {
				mu.Lock()
				result.errs[entity] = err
				mu.Unlock()
			}
			return nil
		})
	}

	run(models.EntityProfile, func() (err error) {
		result.profile, err = s.source.Profile(ctx)
		return err
	})
	run(models.EntityExperiences, func() (err error) {
		result.experiences, err = s.source.Experiences(ctx)
		return err
	})
	run(models.EntityEducation, func() (err error) {
		result.education, err = s.source.Education(ctx)
		return err
	})
	run(models.EntityProjects, func() (err error) {
		result.projects, err = s.source.Projects(ctx)
		return err
	})
	run(models.EntitySkillCategories, func() (err error) {
		result.categories, err = s.source.SkillCategories(ctx)
		return err
	})
	run(models.EntitySkills, func() (err error) {
		result.skills, err = s.source.Skills(ctx)
		return err
	})
	run(models.EntityTestimonials, func() (err error) {
		result.testimonials, err = s.source.Testimonials(ctx)
		return err
	})
	run(models.EntityHiddenGoals, func() (err error) {
		result.hiddenGoals, err = s.source.HiddenGoals(ctx)
		return err
	})

	_ = group.Wait()
	return result
}

func (r *fetchResult) applyTo(dst *tables) {
	ok := func(entity models.Entity) bool {
		_, failed := r.errs[entity]
		return !failed
	}

	if ok(models.EntityProfile) {
		dst.profile = r.profile
	}
	if ok(models.EntityExperiences) {
		dst.experiences = sortedBy(r.experiences, func(e Experience) int { return e.SortOrder })
	}
	if ok(models.EntityEducation) {
		dst.education = sortedBy(r.education, func(e Education) int { return e.SortOrder })
	}
	if ok(models.EntityProjects) {
		dst.projects = sortedBy(r.projects, func(p Project) int { return p.SortOrder })
	}
	if ok(models.EntitySkillCategories) {
		dst.categories = sortedBy(r.categories, func(c SkillCategory) int { return c.SortOrder })
	}
	if ok(models.EntitySkills) {
		dst.skills = sortedBy(r.skills, func(s Skill) int { return s.SortOrder })
	}
	if ok(models.EntityTestimonials) {
		dst.testimonials = sortedBy(r.testimonials, func(t Testimonial) int { return t.SortOrder })
	}
	if ok(models.EntityHiddenGoals) {
		goals := slices.Clone(r.hiddenGoals)
		if goals == nil {
			goals = []HiddenGoal{}
		}
		slices.SortStableFunc(goals, func(a, b HiddenGoal) int { return b.CreatedAt.Compare(a.CreatedAt) })
		dst.hiddenGoals = goals
	}
}

func sortedBy[T any](items []T, key func(T) int) []T {
	out := slices.Clone(items)
	if out == nil {
		return []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return out
}

// Create validates and inserts a row, then refreshes.
func (s *Store) Create(ctx context.Context, record models.Record) (int64, error) {
	if record.Entity() == models.EntityProfile {
		return 0, ErrSingleton
	}
	if err := models.Validate(record); err != nil {
		return 0, err
	}

	id, err := s.source.Insert(ctx, record)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", record.Entity(), err)
	}
	s.refreshAfterWrite(ctx, record.Entity())
	return id, nil
}

// Update applies a partial patch to one row, then refreshes.
func (s *Store) Update(ctx context.Context, entity models.Entity, id int64, patch map[string]any) error {
	if err := models.ValidatePatch(entity, patch); err != nil {
		return err
	}
	if err := s.source.Update(ctx, entity, id, patch); err != nil {
		return fmt.Errorf("update %s %d: %w", entity, id, err)
	}
	s.refreshAfterWrite(ctx, entity)
	return nil
}

// UpdateProfile patches the singleton profile row.
func (s *Store) UpdateProfile(ctx context.Context, patch map[string]any) error {
	return s.Update(ctx, models.EntityProfile, models.ProfileID, patch)
}

// Delete removes one row, then refreshes. Deleting a skill category also
// removes its skills through the schema's cascade.
func (s *Store) Delete(ctx context.Context, entity models.Entity, id int64) error {
	if entity == models.EntityProfile {
		return ErrSingleton
	}
	if _, ok := models.NewRecord(entity); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if err := s.source.Delete(ctx, entity, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", entity, id, err)
	}
	s.refreshAfterWrite(ctx, entity)
	return nil
}

// A failed refresh after a successful write is recorded in Status but does
// not fail the write.
func (s *Store) refreshAfterWrite(ctx context.Context, entity models.Entity) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Error("refresh after write failed", "entity", entity, "error", err)
	}
}

// Snapshot returns a deep copy of the public content.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := Snapshot{
		Profile:      s.data.profile,
		Experiences:  s.data.experiences,
		Education:    s.data.education,
		Projects:     s.data.projects,
		Skills:       GroupSkills(s.data.categories, s.data.skills),
		Testimonials: s.data.testimonials,
	}
	return snapshot.clone()
}

// HiddenGoals returns the chat-only goals, newest first.
func (s *Store) HiddenGoals() []HiddenGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.hiddenGoals)
}

// Count returns the number of mirrored rows of a list entity.
func (s *Store) Count(entity models.Entity) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch entity {
	case models.EntityExperiences:
		return len(s.data.experiences)
	case models.EntityEducation:
		return len(s.data.education)
	case models.EntityProjects:
		return len(s.data.projects)
	case models.EntitySkillCategories:
		return len(s.data.categories)
	case models.EntitySkills:
		return len(s.data.skills)
	case models.EntityTestimonials:
		return len(s.data.testimonials)
	case models.EntityHiddenGoals:
		return len(s.data.hiddenGoals)
	default:
		return 0
	}
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		State:        s.state,
		FailedTables: slices.Clone(s.failed),
		UpdatedAt:    s.updatedAt,
	}
	if s.lastErr != nil {
		status.Error = s.lastErr.Error()
	}
	return status
}

// IsLoadError reports whether err came from a refresh where every table
// failed.
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}
