package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/SAP-F-2025/guardian-service/internal/cache"
	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

const rosterCacheKey = "students"

type rosterEntry struct {
	StudentSummary
	FullName string `json:"fullName"`
}

type searchService struct {
	repo        repositories.Repository
	cacheHelper *cache.CacheHelper
	logger      *slog.Logger
	validator   *validator.Validator

	// collators are not safe for concurrent use
	collMu   sync.Mutex
	collator *collate.Collator
}

func NewSearchService(repo repositories.Repository, cacheHelper *cache.CacheHelper, logger *slog.Logger, validator *validator.Validator) SearchService {
	return &searchService{
		repo:        repo,
		cacheHelper: cacheHelper,
		logger:      logger,
		validator:   validator,
		collator:    collate.New(language.Und, collate.IgnoreCase),
	}
}

// roster returns all students sorted by full name, served from the cache
// for up to the roster TTL so bursts of keystroke-driven searches do not
// each scan the store.
func (s *searchService) roster(ctx context.Context) ([]rosterEntry, error) {
	var entries []rosterEntry
	err := s.cacheHelper.CacheOrExecute(ctx, rosterCacheKey, &entries, cache.RosterCacheConfig.TTL, func() (interface{}, error) {
		return s.loadRoster(ctx)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *searchService) loadRoster(ctx context.Context) ([]rosterEntry, error) {
	students, err := s.repo.User().ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load student roster: %w", err)
	}

	entries := make([]rosterEntry, 0, len(students))
	for _, st := range students {
		entries = append(entries, rosterEntry{
			StudentSummary: StudentSummary{
				UID:       st.UID,
				FirstName: st.FirstName,
				LastName:  st.LastName,
				Birthday:  st.Birthday,
				Grade:     st.EffectiveGrade(),
			},
			FullName: st.FullName(),
		})
	}

	s.collMu.Lock()
	sort.SliceStable(entries, func(i, j int) bool {
		return s.collator.CompareString(entries[i].FullName, entries[j].FullName) < 0
	})
	s.collMu.Unlock()

	return entries, nil
}

func (s *searchService) SearchBySubstring(ctx context.Context, query string) ([]StudentSummary, error) {
	metrics.SearchQueries.WithLabelValues("substring").Inc()

	query = strings.TrimSpace(query)
	if query == "" {
		return []StudentSummary{}, nil
	}

	entries, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := []StudentSummary{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.FullName), needle) {
			out = append(out, e.StudentSummary)
		}
	}
	return out, nil
}

func (s *searchService) FindExact(ctx context.Context, req *ChildSearchRequest) ([]StudentSummary, error) {
	metrics.SearchQueries.WithLabelValues("exact").Inc()

	if req == nil ||
		strings.TrimSpace(req.FirstName) == "" ||
		strings.TrimSpace(req.LastName) == "" ||
		strings.TrimSpace(req.Birthday) == "" {
		return nil, ErrIncompleteCriteria
	}

	// exact search feeds registration and linking, where a just-created
	// student must be findable immediately; bypass the roster cache
	entries, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	birthday := strings.TrimSpace(req.Birthday)

	out := []StudentSummary{}
	for _, e := range entries {
		if strings.EqualFold(e.FirstName, firstName) &&
			strings.EqualFold(e.LastName, lastName) &&
			e.Birthday == birthday {
			out = append(out, e.StudentSummary)
		}
	}
	return out, nil
}

func (s *searchService) FindExactForParent(ctx context.Context, parentID string, req *ChildSearchRequest) ([]StudentSummary, error) {
	matches, err := s.FindExact(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return matches, nil
	}

	parent, err := s.repo.User().GetParent(ctx, parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to load parent %s: %w", parentID, err)
	}

	linked := map[string]bool{}
	for _, id := range parent.StudentList {
		linked[id] = true
	}

	out := []StudentSummary{}
	for _, m := range matches {
		if !linked[m.UID] {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		// every match is already one of this parent's children
		return nil, ErrAlreadyLinked
	}
	return out, nil
}

// InvalidateRoster drops the cached roster after student-creating writes so
// substring search picks the change up before the TTL expires.
func (s *searchService) InvalidateRoster(ctx context.Context) error {
	return s.cacheHelper.InvalidatePattern(ctx, rosterCacheKey+"*")
}

func (s *searchService) ListTeachers(ctx context.Context) ([]TeacherSummary, error) {
	var out []TeacherSummary
	err := s.cacheHelper.CacheOrExecute(ctx, "directory", &out, cache.TeacherCacheConfig.TTL, func() (interface{}, error) {
		teachers, err := s.repo.User().ListTeachers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load teachers: %w", err)
		}
		summaries := make([]TeacherSummary, 0, len(teachers))
		for _, t := range teachers {
			summaries = append(summaries, TeacherSummary{
				UID:       t.UID,
				FirstName: t.FirstName,
				LastName:  t.LastName,
			})
		}
		s.collMu.Lock()
		sort.SliceStable(summaries, func(i, j int) bool {
			return s.collator.CompareString(
				summaries[i].LastName+" "+summaries[i].FirstName,
				summaries[j].LastName+" "+summaries[j].FirstName) < 0
		})
		s.collMu.Unlock()
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []TeacherSummary{}
	}
	return out, nil
}
