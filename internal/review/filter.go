package review

import (
	"sort"
	"strings"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

// JobPredicate reports whether a job passes one filter.
type JobPredicate func(job models.AnalysisJob) bool

// Predicates builds the independent predicates for a filter state. Unset
// filters contribute no predicate.
func Predicates(filters models.FilterState) []JobPredicate {
	preds := make([]JobPredicate, 0, 4)
	if q := strings.ToLower(strings.TrimSpace(filters.SearchQuery)); q != "" {
		preds = append(preds, matchSearch(q))
	}
	if c := strings.TrimSpace(filters.ClientFilter); c != "" && c != models.FilterAll {
		preds = append(preds, func(job models.AnalysisJob) bool { return job.Client == c })
	}
	if s := strings.TrimSpace(filters.StatusFilter); s != "" && s != models.FilterAll {
		want := NormalizeStatus(s)
		preds = append(preds, func(job models.AnalysisJob) bool { return NormalizeStatus(job.Status) == want })
	}
	if filters.DateFrom != nil || filters.DateTo != nil {
		from, to := filters.DateFrom, filters.DateTo
		preds = append(preds, func(job models.AnalysisJob) bool {
			created := job.CreatedTime.Time
			if created.IsZero() {
				return false
			}
			if from != nil && created.Before(*from) {
				return false
			}
			if to != nil && created.After(*to) {
				return false
			}
			return true
		})
	}
	return preds
}

// ApplyFilters returns the jobs matching every predicate. The input slice is
// never modified.
func ApplyFilters(jobs []models.AnalysisJob, filters models.FilterState) []models.AnalysisJob {
	return Where(jobs, Predicates(filters)...)
}

// Where keeps the jobs that satisfy all predicates, in input order.
func Where(jobs []models.AnalysisJob, preds ...JobPredicate) []models.AnalysisJob {
	out := make([]models.AnalysisJob, 0, len(jobs))
next:
	for _, job := range jobs {
		for _, pred := range preds {
			if !pred(job) {
				continue next
			}
		}
		out = append(out, job)
	}
	return out
}

func matchSearch(q string) JobPredicate {
	return func(job models.AnalysisJob) bool {
		for _, field := range []string{job.JobID.String(), job.Client, job.User, job.ContractNumber} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

// ToggleSort flips the direction when key is already selected, otherwise it
// selects key ascending.
func ToggleSort(current models.SortConfig, key string) models.SortConfig {
	if current.Key == key {
		if current.Direction == models.SortAsc {
			return models.SortConfig{Key: key, Direction: models.SortDesc}
		}
		return models.SortConfig{Key: key, Direction: models.SortAsc}
	}
	return models.SortConfig{Key: key, Direction: models.SortAsc}
}

// SortJobs returns a sorted copy. Unknown keys leave the order unchanged.
func SortJobs(jobs []models.AnalysisJob, cfg models.SortConfig) []models.AnalysisJob {
	out := append([]models.AnalysisJob(nil), jobs...)
	if cfg.Key != models.SortKeyCreatedTime {
		return out
	}
	desc := cfg.Direction == models.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedTime.Time, out[j].CreatedTime.Time
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
	return out
}
