package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/pricelist-review-api/internal/dto"
	"github.com/noah-isme/pricelist-review-api/internal/models"
	"github.com/noah-isme/pricelist-review-api/internal/review"
	"github.com/noah-isme/pricelist-review-api/internal/service"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse and review analysis jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis jobs with the dashboard filters",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Print the categorized changes of one job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsExportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Write the analysis workbook, PDF summary or one category CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsExport,
}

var jobsApproveCmd = &cobra.Command{
	Use:   "approve <job-id>",
	Short: "Approve a pending job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatusChange(models.StatusActionApprove),
}

var jobsRejectCmd = &cobra.Command{
	Use:   "reject <job-id>",
	Short: "Reject a pending job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatusChange(models.StatusActionReject),
}

var (
	listSearch   string
	listClient   string
	listStatus   string
	listDateFrom string
	listDateTo   string
	listPage     int
	listAsc      bool

	exportOut      string
	exportFormat   string
	exportCategory string

	statusYes bool
)

func init() {
	jobsListCmd.Flags().StringVar(&listSearch, "search", "", "Match job id, client, user or contract number")
	jobsListCmd.Flags().StringVar(&listClient, "client", models.FilterAll, "Client name")
	jobsListCmd.Flags().StringVar(&listStatus, "status", models.FilterAll, "pending, approved or rejected")
	jobsListCmd.Flags().StringVar(&listDateFrom, "from", "", "Created on or after (YYYY-MM-DD)")
	jobsListCmd.Flags().StringVar(&listDateTo, "to", "", "Created on or before (YYYY-MM-DD)")
	jobsListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	jobsListCmd.Flags().BoolVar(&listAsc, "oldest-first", false, "Sort by creation time ascending")

	jobsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (defaults to the standard file name in the current directory)")
	jobsExportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx, pdf or csv")
	jobsExportCmd.Flags().StringVar(&exportCategory, "category", "", "Category to export with --format csv")

	jobsApproveCmd.Flags().BoolVarP(&statusYes, "yes", "y", false, "Confirm the decision")
	jobsRejectCmd.Flags().BoolVarP(&statusYes, "yes", "y", false, "Confirm the decision")

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd, jobsExportCmd, jobsApproveCmd, jobsRejectCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	filters := models.DefaultFilterState()
	filters.SearchQuery = strings.TrimSpace(listSearch)
	filters.ClientFilter = listClient
	filters.StatusFilter = listStatus
	filters.CurrentPage = listPage
	if listAsc {
		filters.Sort.Direction = models.SortAsc
	}
	if filters.DateFrom, err = models.ParseDateBound(listDateFrom, false); err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	if filters.DateTo, err = models.ParseDateBound(listDateTo, true); err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	result, err := svc.jobs.List(cmd.Context(), dto.JobListQuery{Filters: filters})
	if err != nil {
		return err
	}
	return printJobs(cmd.OutOrStdout(), result)
}

func printJobs(out io.Writer, result *dto.JobListResponse) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tCLIENT\tCONTRACT\tUSER\tSTATUS\tCREATED")
	for _, job := range result.Jobs {
		created := "-"
		if job.CreatedTime != nil {
			created = job.CreatedTime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", job.JobID, job.Client, job.ContractNumber, job.User, job.Status.Label, created)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if p := result.Pagination; p != nil {
		fmt.Fprintf(out, "page %d of %d, %d jobs\n", p.Page, p.TotalPages, result.Total)
	}
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	job, bucketed, err := svc.jobs.Categorized(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job %s  %s  %s  [%s]\n", job.JobID, job.Client, job.ContractNumber, review.Badge(job.Status).Label)
	for _, category := range review.Categories {
		table := review.RenderTable(category, bucketed.Actions[category])
		fmt.Fprintf(out, "\n%s (%d)\n", category.Title(), len(bucketed.Actions[category]))
		if err := printTable(out, table); err != nil {
			return err
		}
	}
	if bucketed.Dropped > 0 {
		fmt.Fprintf(out, "\n%d unrecognised records skipped\n", bucketed.Dropped)
	}
	return nil
}

func printTable(out io.Writer, table review.Table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = strings.ToUpper(col.Label)
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	if table.EmptyMessage != "" {
		fmt.Fprintln(w, table.EmptyMessage)
	}
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = row.Cells[col.Key]
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func runJobsExport(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	file, err := exportFile(cmd.Context(), svc, args[0])
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = file.Filename
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", filepath.Clean(path), len(file.Data))
	return nil
}

func exportFile(ctx context.Context, svc *services, jobID string) (*service.ExportFile, error) {
	switch strings.ToLower(exportFormat) {
	case "xlsx":
		return svc.exports.Workbook(ctx, jobID, "")
	case "pdf":
		return svc.exports.Summary(ctx, jobID)
	case "csv":
		category, ok := review.ParseCategory(exportCategory)
		if !ok {
			return nil, fmt.Errorf("--category must be one of %s", categoryNames())
		}
		return svc.exports.Category(ctx, jobID, category)
	default:
		return nil, fmt.Errorf("unsupported format %q", exportFormat)
	}
}

func categoryNames() string {
	names := make([]string, len(review.Categories))
	for i, c := range review.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runStatusChange(action models.StatusAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return err
		}

		confirmation, err := svc.jobs.Confirmation(cmd.Context(), args[0], string(action))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\nClient: %s\nContract: %s\n%s\n", confirmation.Title, confirmation.Client, confirmation.ContractNumber, confirmation.Warning)
		if !statusYes {
			return fmt.Errorf("re-run with --yes to %s job %s", action, args[0])
		}

		result, err := svc.status.Change(cmd.Context(), service.StatusChange{
			JobID:   args[0],
			Actor:   "review-cli",
			Request: dto.StatusChangeRequest{Action: string(action), Confirmed: true},
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Message)
		return nil
	}
}
