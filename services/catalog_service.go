package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SourceUnknown marks a response produced with no usable catalog table.
const SourceUnknown = "unknown"

var ErrCatalogUnavailable = errors.New("no food source configured")

// CatalogService answers food queries against whichever source the startup
// probe selected. Missing-catalog situations degrade to an empty, explicitly
// marked result instead of an error: catalog absence is not fatal for the
// admin panel.
type CatalogService struct {
	sources []FoodSource
	active  FoodSource
}

// NewCatalogService probes the candidate tables once, in preference order.
// A non-empty preferred name pins the source regardless of the probe.
func NewCatalogService(db *gorm.DB, preferred string) *CatalogService {
	c := &CatalogService{
		sources: []FoodSource{newMalaysiaSource(db), newCanonicalSource(db)},
	}
	if preferred != "" {
		for _, s := range c.sources {
			if s.Name() == preferred {
				c.active = s
				break
			}
		}
		if c.active == nil {
			log.Printf("food catalog: unknown FOOD_SOURCE %q, falling back to probe", preferred)
		}
	}
	if c.active == nil {
		for _, s := range c.sources {
			if s.Available() {
				c.active = s
				break
			}
		}
	}
	if c.active != nil {
		log.Printf("food catalog: active source %q", c.active.Name())
	} else {
		log.Printf("food catalog: no source table found, catalog is unavailable")
	}
	return c
}

// ActiveSource reports the probe result; SourceUnknown when nothing matched.
func (c *CatalogService) ActiveSource() string {
	if c.active == nil {
		return SourceUnknown
	}
	return c.active.Name()
}

// CatalogList distinguishes "zero rows" from "feature not configured":
// Unavailable is only set when no source table exists or the source errored.
type CatalogList struct {
	Foods       []FoodRecord `json:"foods"`
	Source      string       `json:"source"`
	Pagination  Pagination   `json:"pagination"`
	Unavailable bool         `json:"-"`
	Reason      string       `json:"-"`
}

// List runs the full query pipeline: source query, canonical reshaping,
// precision re-filter, dedup by completeness, category filter, stable sort.
// It never fails; every degraded stage yields an empty result.
func (c *CatalogService) List(ctx context.Context, q FoodQuery) *CatalogList {
	q = q.sanitized()
	empty := func(reason string) *CatalogList {
		return &CatalogList{
			Foods:       []FoodRecord{},
			Source:      SourceUnknown,
			Pagination:  NewPagination(0, q.Page, q.PerPage),
			Unavailable: true,
			Reason:      reason,
		}
	}
	if c.active == nil {
		return empty("no food table found; create a `foods` table or restore `malaysia_food_database`")
	}

	page, err := c.active.List(ctx, q)
	if err != nil {
		log.Printf("food catalog: list on %s failed: %v", c.active.Name(), err)
		return empty("food source query failed")
	}

	foods := page.Foods
	if q.Text != "" {
		// The source-side match is intentionally permissive; precision
		// filtering happens here, after reshaping.
		foods = refilterFoods(foods, q.Text)
	}
	foods = dedupeFoods(foods)
	if q.Category != "" {
		foods = filterByCategory(foods, q.Category)
	}
	sortFoods(foods, q.SortBy, q.Desc)

	return &CatalogList{
		Foods:  foods,
		Source: c.active.Name(),
		// Total is the source-reported match count; dedup only collapses
		// rows within the current page.
		Pagination: NewPagination(page.Total, q.Page, q.PerPage),
	}
}

func (c *CatalogService) Get(ctx context.Context, id uint) (*FoodRecord, string, error) {
	if c.active == nil {
		return nil, SourceUnknown, ErrCatalogUnavailable
	}
	rec, err := c.active.Get(ctx, id)
	return rec, c.active.Name(), err
}

func (c *CatalogService) LookupByName(ctx context.Context, name string) (*FoodRecord, bool) {
	if c.active == nil || strings.TrimSpace(name) == "" {
		return nil, false
	}
	rec, err := c.active.LookupByName(ctx, name)
	if err != nil {
		return nil, false
	}
	return rec, true
}

func (c *CatalogService) Create(ctx context.Context, in FoodInput) (*FoodRecord, string, error) {
	if c.active == nil {
		return nil, SourceUnknown, ErrCatalogUnavailable
	}
	rec, err := c.active.Insert(ctx, in)
	return rec, c.active.Name(), err
}

func (c *CatalogService) Update(ctx context.Context, id uint, in FoodInput) (*FoodRecord, string, error) {
	if c.active == nil {
		return nil, SourceUnknown, ErrCatalogUnavailable
	}
	rec, err := c.active.Update(ctx, id, in)
	return rec, c.active.Name(), err
}

func (c *CatalogService) Delete(ctx context.Context, id uint) (string, error) {
	if c.active == nil {
		return SourceUnknown, ErrCatalogUnavailable
	}
	return c.active.Name(), c.active.Delete(ctx, id)
}

// Count is best-effort: 0 when no source exists or the count fails.
func (c *CatalogService) Count(ctx context.Context) int64 {
	if c.active == nil {
		return 0
	}
	n, err := c.active.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

func (c *CatalogService) CountCreatedBetween(ctx context.Context, from, to time.Time) int64 {
	if c.active == nil {
		return 0
	}
	n, err := c.active.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return 0
	}
	return n
}

// ---------- pipeline helpers ----------

// macroCompleteness counts populated macro fields; the dedup tie-breaker.
func macroCompleteness(f FoodRecord) int {
	n := 0
	for _, v := range []*float64{f.Kcal, f.Protein, f.Carbs, f.Fat} {
		if v != nil {
			n++
		}
	}
	return n
}

func foodMatches(f FoodRecord, needle string) bool {
	if strings.Contains(strings.ToLower(f.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(f.Category), needle) {
		return true
	}
	for _, alt := range f.AltNames {
		if strings.Contains(strings.ToLower(alt), needle) {
			return true
		}
	}
	return false
}

func refilterFoods(foods []FoodRecord, text string) []FoodRecord {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := foods[:0:0]
	for _, f := range foods {
		if foodMatches(f, needle) {
			out = append(out, f)
		}
	}
	return out
}

// dedupeFoods collapses case-insensitive name collisions, keeping the record
// with strictly more populated macro fields. Ties keep the first-seen row.
func dedupeFoods(foods []FoodRecord) []FoodRecord {
	seen := map[string]int{}
	out := foods[:0:0]
	for _, f := range foods {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		if i, ok := seen[key]; ok {
			if macroCompleteness(f) > macroCompleteness(out[i]) {
				out[i] = f
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, f)
	}
	return out
}

func filterByCategory(foods []FoodRecord, category string) []FoodRecord {
	want := strings.ToLower(strings.TrimSpace(category))
	out := foods[:0:0]
	for _, f := range foods {
		if strings.ToLower(strings.TrimSpace(f.Category)) == want {
			out = append(out, f)
		}
	}
	return out
}

func numOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func sortFoods(foods []FoodRecord, key string, desc bool) {
	less := func(a, b FoodRecord) bool {
		switch key {
		case "calories":
			return numOrZero(a.Kcal) < numOrZero(b.Kcal)
		case "category":
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(foods, func(i, j int) bool {
		if desc {
			return less(foods[j], foods[i])
		}
		return less(foods[i], foods[j])
	})
}
