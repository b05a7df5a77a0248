package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricelist-review-api/internal/models"
)

func newAuditRepoMock(t *testing.T) (*AuditRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewAuditRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestAuditRepositoryCreateFillsDefaults(t *testing.T) {
	repo, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO job_status_audit")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.AuditLog{JobID: "42", Action: models.AuditActionJobReject, FromStatus: "pending", ToStatus: "rejected", Actor: "reviewer@example.com"}
	require.NoError(t, repo.Create(context.Background(), log))
	require.NotEmpty(t, log.ID)
	require.False(t, log.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByJob(t *testing.T) {
	repo, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "job_id", "action", "from_status", "to_status", "actor", "message", "request_id", "created_at"}).
		AddRow("a-1", "42", models.AuditActionJobApprove, "pending", "approved", "admin", "ok", "req-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM job_status_audit WHERE job_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("42", 50, 0).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), models.AuditFilter{JobID: "42"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "approved", logs[0].ToStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListAll(t *testing.T) {
	repo, mock, cleanup := newAuditRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM job_status_audit ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	logs, err := repo.List(context.Background(), models.AuditFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Empty(t, logs)
	require.NoError(t, mock.ExpectationsWereMet())
}
