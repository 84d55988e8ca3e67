package repository

import (
	"context"
	"testing"
	"time"

	"appointment-scheduler/core/database"
	"appointment-scheduler/core/params"
	"appointment-scheduler/modules/bulkupload/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*BulkUploadRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewBulkUploadRepository(database.New(sqlx.NewDb(db, "postgres"))), mock
}

func TestBulkUploadRepository_CompleteOnlyWhileProcessing(t *testing.T) {
	repo, mock := newMockRepo(t)

	upload := &entity.BulkUpload{}
	upload.ID = uuid.New()
	now := time.Now()
	upload.Finish(5, 3, entity.RowErrors{{Row: 3, Field: "email", Message: "Invalid email format"}}, now.Add(-time.Second), now)

	mock.ExpectExec(`UPDATE bulk_uploads .+ WHERE id = \$1 AND status = 'processing'`).
		WithArgs(upload.ID, entity.StatusPartial, 5, 3, 1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bulk_uploads .+ WHERE id = \$1 AND status = 'processing'`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.Complete(context.Background(), upload)
	if err != nil || !applied {
		t.Fatalf("Complete() = %v, %v; want true", applied, err)
	}
	applied, err = repo.Complete(context.Background(), upload)
	if err != nil || applied {
		t.Fatalf("second Complete() = %v, %v; want false", applied, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBulkUploadRepository_ListFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bulk_uploads WHERE 1=1 AND uploaded_by = \$1 AND status = \$2`).
		WithArgs(owner, "partial").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(owner, "partial", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "uploaded_by", "file_name", "original_file_name", "file_size", "mime_type", "status",
			"total_records", "successful_records", "error_records", "errors", "processed_at", "processing_time_ms",
			"created_at", "updated_at",
		}).AddRow(uuid.New().String(), owner.String(), "uploads/k.csv", "users.csv", 120, "text/csv", "partial",
			5, 3, 2, []byte(`[{"row":3,"field":"email","message":"Invalid email format"}]`), time.Now(), 42,
			time.Now(), time.Now()))

	page, err := repo.List(context.Background(), HistoryFilter{UploadedBy: &owner, Status: "partial"}, params.QueryParams{PageNumber: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Fatalf("List() = %+v", page)
	}
	if got := page.Items[0].Errors; len(got) != 1 || got[0].Row != 3 || got[0].Field != "email" {
		t.Errorf("errors = %+v", got)
	}
}

func TestBulkUploadRepository_FailStuck(t *testing.T) {
	repo, mock := newMockRepo(t)
	stuck := uuid.New()

	mock.ExpectQuery(`UPDATE bulk_uploads\s+SET status = 'failed'.+WHERE status = 'processing' AND created_at < \$1\s+RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(stuck.String()))

	ids, err := repo.FailStuck(context.Background(), time.Now().Add(-30*time.Minute), entity.RowErrors{{Row: 0, Message: "Processing timed out"}})
	if err != nil {
		t.Fatalf("FailStuck() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != stuck {
		t.Errorf("FailStuck() = %v", ids)
	}
}
