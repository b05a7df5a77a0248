package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

func job(id, client, user, contract, status string, created time.Time) models.AnalysisJob {
	return models.AnalysisJob{
		JobID:          models.FlexibleID(id),
		Client:         client,
		User:           user,
		ContractNumber: contract,
		Status:         status,
		CreatedTime:    models.Timestamp{Time: created},
	}
}

func sampleJobs() []models.AnalysisJob {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }
	return []models.AnalysisJob{
		job("101", "Acme Corp", "alice", "GS-07F-0001", "pending", day(1)),
		job("102", "Globex", "bob", "GS-07F-0002", "Approved", day(3)),
		job("103", "Acme Corp", "carol", "GS-07F-0003", "rejected", day(5)),
		job("104", "Initech", "alice", "GS-35F-0004", "weird", day(7)),
	}
}

func ids(jobs []models.AnalysisJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.JobID.String())
	}
	return out
}

func TestApplyFiltersSearchMatchesAllFields(t *testing.T) {
	jobs := sampleJobs()
	filters := models.DefaultFilterState()

	filters.SearchQuery = "ACME"
	require.Equal(t, []string{"101", "103"}, ids(ApplyFilters(jobs, filters)))

	filters.SearchQuery = "104"
	require.Equal(t, []string{"104"}, ids(ApplyFilters(jobs, filters)))

	filters.SearchQuery = "Bob"
	require.Equal(t, []string{"102"}, ids(ApplyFilters(jobs, filters)))

	filters.SearchQuery = "gs-35f"
	require.Equal(t, []string{"104"}, ids(ApplyFilters(jobs, filters)))

	filters.SearchQuery = ""
	require.Len(t, ApplyFilters(jobs, filters), 4)
}

func TestApplyFiltersClientStatusAndDates(t *testing.T) {
	jobs := sampleJobs()
	filters := models.DefaultFilterState()

	filters.ClientFilter = "Acme Corp"
	require.Equal(t, []string{"101", "103"}, ids(ApplyFilters(jobs, filters)))

	filters.ClientFilter = models.FilterAll
	filters.StatusFilter = "approved"
	require.Equal(t, []string{"102"}, ids(ApplyFilters(jobs, filters)))

	filters.StatusFilter = "unknown"
	require.Equal(t, []string{"104"}, ids(ApplyFilters(jobs, filters)))

	filters.StatusFilter = models.FilterAll
	from := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	filters.DateFrom, filters.DateTo = &from, &to
	require.Equal(t, []string{"102", "103"}, ids(ApplyFilters(jobs, filters)))
}

func TestApplyFiltersPredicatesCommute(t *testing.T) {
	jobs := sampleJobs()
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	filters := models.FilterState{SearchQuery: "a", ClientFilter: "Acme Corp", StatusFilter: "pending", DateFrom: &from}

	preds := Predicates(filters)
	require.Len(t, preds, 4)
	forward := Where(jobs, preds...)
	reversed := Where(jobs, preds[3], preds[2], preds[1], preds[0])
	stepwise := jobs
	for _, p := range []JobPredicate{preds[2], preds[0], preds[3], preds[1]} {
		stepwise = Where(stepwise, p)
	}
	require.Equal(t, ids(forward), ids(reversed))
	require.Equal(t, ids(forward), ids(stepwise))
	require.Equal(t, []string{"101"}, ids(forward))
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	jobs := sampleJobs()
	before := ids(jobs)
	filters := models.DefaultFilterState()
	filters.StatusFilter = "pending"
	_ = ApplyFilters(jobs, filters)
	_ = SortJobs(jobs, models.SortConfig{Key: models.SortKeyCreatedTime, Direction: models.SortDesc})
	require.Equal(t, before, ids(jobs))
}

func TestSortAndToggle(t *testing.T) {
	jobs := sampleJobs()
	cfg := ToggleSort(models.SortConfig{}, models.SortKeyCreatedTime)
	require.Equal(t, models.SortAsc, cfg.Direction)
	require.Equal(t, []string{"101", "102", "103", "104"}, ids(SortJobs(jobs, cfg)))

	cfg = ToggleSort(cfg, models.SortKeyCreatedTime)
	require.Equal(t, models.SortDesc, cfg.Direction)
	require.Equal(t, []string{"104", "103", "102", "101"}, ids(SortJobs(jobs, cfg)))

	cfg = ToggleSort(cfg, "client")
	require.Equal(t, models.SortConfig{Key: "client", Direction: models.SortAsc}, cfg)
	require.Equal(t, ids(jobs), ids(SortJobs(jobs, cfg)))
}
