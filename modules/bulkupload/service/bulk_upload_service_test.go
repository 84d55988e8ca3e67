package service

import (
	"context"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	coreEntity "appointment-scheduler/core/entity"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/params"
	"appointment-scheduler/core/storage"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/bulkupload/dto"
	"appointment-scheduler/modules/bulkupload/entity"
	"appointment-scheduler/modules/bulkupload/repository"
	"appointment-scheduler/modules/bulkupload/worker"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// =============================================================================
// Fakes
// =============================================================================

type memUploadRepo struct {
	mu      sync.Mutex
	uploads map[uuid.UUID]entity.BulkUpload
}

func newMemUploadRepo() *memUploadRepo {
	return &memUploadRepo{uploads: map[uuid.UUID]entity.BulkUpload{}}
}

func (r *memUploadRepo) Create(_ context.Context, u *entity.BulkUpload) (*entity.BulkUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *u
	created.ID = uuid.New()
	created.Status = entity.StatusProcessing
	created.Errors = entity.RowErrors{}
	created.CreatedAt = time.Now()
	r.uploads[created.ID] = created
	return &created, nil
}

func (r *memUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.BulkUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.uploads[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUploadRepo) Complete(_ context.Context, u *entity.BulkUpload) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.uploads[u.ID]
	if !ok || current.Status != entity.StatusProcessing {
		return false, nil
	}
	r.uploads[u.ID] = *u
	return true, nil
}

func (r *memUploadRepo) List(_ context.Context, f repository.HistoryFilter, p params.QueryParams) (*entity.PaginatedBulkUploadEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []entity.BulkUpload
	for _, u := range r.uploads {
		if f.UploadedBy != nil && u.UploadedBy != *f.UploadedBy {
			continue
		}
		if f.Status != "" && string(u.Status) != f.Status {
			continue
		}
		items = append(items, u)
	}
	return &entity.PaginatedBulkUploadEntity{Items: items, TotalItems: len(items), PageNumber: p.PageNumber, PageSize: p.PageSize}, nil
}

func (r *memUploadRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.uploads[id]
	delete(r.uploads, id)
	return ok, nil
}

func (r *memUploadRepo) FailStuck(_ context.Context, before time.Time, rowErrors entity.RowErrors) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, u := range r.uploads {
		if u.Status == entity.StatusProcessing && u.CreatedAt.Before(before) {
			u.Status = entity.StatusFailed
			u.Errors = rowErrors
			r.uploads[id] = u
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memUploadRepo) get(t *testing.T, id uuid.UUID) entity.BulkUpload {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[id]
	if !ok {
		t.Fatalf("upload %s not stored", id)
	}
	return u
}

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*userEntity.User
}

func newMemUsers(existing ...string) *memUsers {
	m := &memUsers{byEmail: map[string]*userEntity.User{}}
	for _, email := range existing {
		m.byEmail[email] = &userEntity.User{BaseEntity: coreEntity.BaseEntity{ID: uuid.New()}, Email: email}
	}
	return m
}

func (m *memUsers) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*userEntity.User, *errors.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]*userEntity.User{}
	for _, u := range m.byEmail {
		for _, id := range ids {
			if u.ID == id {
				out[id] = u
			}
		}
	}
	return out, nil
}

func (m *memUsers) EmailExists(_ context.Context, email string) (bool, *errors.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[utils.NormalizeEmail(email)]
	return ok, nil
}

func (m *memUsers) Create(_ context.Context, in *userDto.CreateUserInput) (*userEntity.User, *errors.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &userEntity.User{BaseEntity: coreEntity.BaseEntity{ID: uuid.New()}, FirstName: in.FirstName, LastName: in.LastName, Email: utils.NormalizeEmail(in.Email), Role: in.Role}
	m.byEmail[u.Email] = u
	return u, nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type recordingNotifier struct {
	kinds []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ uuid.UUID, _, _, kind string, _ map[string]any) {
	n.kinds = append(n.kinds, kind)
}

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	svc      *BulkUploadService
	repo     *memUploadRepo
	users    *memUsers
	queue    *fakeQueue
	notifier *recordingNotifier
	dir      string
	manager  *utils.TokenClaims
	dev      *utils.TokenClaims
}

func newFixture(t *testing.T, existingEmails ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		repo:     newMemUploadRepo(),
		users:    newMemUsers(existingEmails...),
		queue:    &fakeQueue{},
		notifier: &recordingNotifier{},
		dir:      dir,
		manager:  &utils.TokenClaims{UserID: uuid.New(), Role: "Manager"},
		dev:      &utils.TokenClaims{UserID: uuid.New(), Role: "Developer"},
	}
	f.svc = NewBulkUploadService(f.repo, f.users, store, f.queue, f.notifier, Options{MaxSizeBytes: 10 << 20, StuckAfter: 30 * time.Minute})
	return f
}

func csvFile(name, content string) *dto.UploadFile {
	return &dto.UploadFile{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/csv",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func storedFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func assertAppError(t *testing.T, appErr *errors.AppError, code errors.ErrorCode, message string) {
	t.Helper()
	if appErr == nil {
		t.Fatalf("expected error %s %q, got nil", code, message)
	}
	if appErr.Code != code || (message != "" && appErr.Message != message) {
		t.Fatalf("error = %s %q, want %s %q", appErr.Code, appErr.Message, code, message)
	}
}

// accept uploads content as the manager and runs the queued task.
func (f *fixture) acceptAndProcess(t *testing.T, file *dto.UploadFile) entity.BulkUpload {
	t.Helper()
	accepted, appErr := f.svc.Accept(context.Background(), f.manager, file)
	if appErr != nil {
		t.Fatalf("Accept() error = %v", appErr)
	}
	if len(f.queue.tasks) != 1 || f.queue.tasks[0].Type() != worker.TypeProcessUpload {
		t.Fatalf("queued tasks = %v", f.queue.tasks)
	}
	handler := worker.NewProcessHandler(f.svc)
	if err := handler(context.Background(), f.queue.tasks[0]); err != nil {
		t.Fatalf("process handler error = %v", err)
	}
	return f.repo.get(t, accepted.UploadID)
}

const header = "firstName,lastName,email,password,role\n"

// =============================================================================
// Accept
// =============================================================================

func TestAccept_NonManagerDiscardsFile(t *testing.T) {
	f := newFixture(t)

	_, appErr := f.svc.Accept(context.Background(), f.dev, csvFile("users.csv", header))
	assertAppError(t, appErr, errors.ErrForbidden, "Only managers can upload bulk users")

	if n := storedFiles(t, f.dir); n != 0 {
		t.Errorf("stored files = %d, want 0", n)
	}
	if len(f.queue.tasks) != 0 {
		t.Error("nothing should be queued")
	}
}

func TestAccept_Rejections(t *testing.T) {
	f := newFixture(t)

	pdf := csvFile("users.pdf", "x")
	pdf.ContentType = "application/pdf"
	_, appErr := f.svc.Accept(context.Background(), f.manager, pdf)
	assertAppError(t, appErr, errors.ErrInvalidInput, "Only CSV and Excel files are allowed")

	wrongMime := csvFile("users.csv", "x")
	wrongMime.ContentType = "image/png"
	_, appErr = f.svc.Accept(context.Background(), f.manager, wrongMime)
	assertAppError(t, appErr, errors.ErrInvalidInput, "Only CSV and Excel files are allowed")

	big := csvFile("users.csv", "x")
	big.Size = 11 << 20
	_, appErr = f.svc.Accept(context.Background(), f.manager, big)
	assertAppError(t, appErr, errors.ErrInvalidInput, "File size too large. Maximum size is 10MB")

	_, appErr = f.svc.Accept(context.Background(), f.manager, nil)
	assertAppError(t, appErr, errors.ErrInvalidInput, "File is required")
}

func TestAccept_EnqueueFailureFailsUpload(t *testing.T) {
	f := newFixture(t)
	f.queue.err = stdErrors.New("redis unavailable")

	_, appErr := f.svc.Accept(context.Background(), f.manager, csvFile("users.csv", header))
	assertAppError(t, appErr, errors.ErrInternalServer, "")

	if len(f.repo.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(f.repo.uploads))
	}
	for _, u := range f.repo.uploads {
		if u.Status != entity.StatusFailed {
			t.Errorf("status = %s, want failed", u.Status)
		}
	}
	if n := storedFiles(t, f.dir); n != 0 {
		t.Errorf("stored files = %d, want 0", n)
	}
}

// =============================================================================
// Process
// =============================================================================

func TestProcess_PartialWithBadEmails(t *testing.T) {
	f := newFixture(t)
	content := header +
		"Ada,Lovelace,ada@example.com,password1,Developer\n" +
		"Bad,Email,not-an-email,password1,Developer\n" +
		"Alan,Turing,alan@example.com,password1,Manager\n" +
		"Also,Bad,also@bad,password1,Developer\n" +
		"Grace,Hopper,grace@example.com,password1,Developer\n"

	upload := f.acceptAndProcess(t, csvFile("team.csv", content))

	if upload.Status != entity.StatusPartial {
		t.Errorf("status = %s, want partial", upload.Status)
	}
	if upload.TotalRecords != 5 || upload.SuccessfulRecords != 3 || upload.ErrorRecords != 2 {
		t.Errorf("counts = %d/%d/%d, want 5/3/2", upload.TotalRecords, upload.SuccessfulRecords, upload.ErrorRecords)
	}
	if upload.Errors[0].Row != 3 || upload.Errors[1].Row != 5 {
		t.Errorf("error rows = %d,%d; want 3,5", upload.Errors[0].Row, upload.Errors[1].Row)
	}
	if upload.ProcessedAt == nil || upload.ProcessingTimeMs == nil {
		t.Error("processing time must be recorded")
	}
	if len(f.notifier.kinds) != 1 || f.notifier.kinds[0] != NotificationBulkUploadFinished {
		t.Errorf("notifications = %v", f.notifier.kinds)
	}
}

func TestProcess_RowsAfterBlankLineKeepFileLines(t *testing.T) {
	f := newFixture(t)
	content := header +
		"Ada,Lovelace,ada@example.com,password1,Developer\n" +
		"\n" +
		"Bad,Email,not-an-email,password1,Developer\n"

	upload := f.acceptAndProcess(t, csvFile("gaps.csv", content))

	if upload.TotalRecords != 2 || upload.SuccessfulRecords != 1 || len(upload.Errors) != 1 {
		t.Fatalf("counts = %d/%d errors=%v", upload.TotalRecords, upload.SuccessfulRecords, upload.Errors)
	}
	if got := upload.Errors[0]; got.Row != 4 || got.Field != "email" {
		t.Errorf("error = %+v, want email error on line 4", got)
	}
}

func TestProcess_ShortPasswordRow(t *testing.T) {
	f := newFixture(t)
	content := header +
		"Ada,Lovelace,ada@example.com,password1,Developer\n" +
		"Alan,Turing,alan@example.com,password1,Manager\n" +
		"Short,Pass,short@example.com,abc,Developer\n"

	upload := f.acceptAndProcess(t, csvFile("team.csv", content))

	if len(upload.Errors) != 1 {
		t.Fatalf("errors = %+v", upload.Errors)
	}
	if got := upload.Errors[0]; got.Row != 4 || got.Field != "password" {
		t.Errorf("error = %+v, want row 4 field password", got)
	}
}

func TestProcess_DuplicateAndAllRowsRejected(t *testing.T) {
	f := newFixture(t, "taken@example.com")
	content := header + "Taken,User,Taken@Example.com,password1,Developer\n"

	upload := f.acceptAndProcess(t, csvFile("dupes.csv", content))

	if upload.Status != entity.StatusPartial || upload.SuccessfulRecords != 0 {
		t.Errorf("upload = %s %d, want partial 0", upload.Status, upload.SuccessfulRecords)
	}
	if upload.Errors[0].Field != "email" || upload.Errors[0].Message != "Email already exists" {
		t.Errorf("error = %+v", upload.Errors[0])
	}
}

func TestProcess_CompletedWhenClean(t *testing.T) {
	f := newFixture(t)
	upload := f.acceptAndProcess(t, csvFile("ok.csv", header+"Ada,Lovelace,ada@example.com,password1,Developer\n"))

	if upload.Status != entity.StatusCompleted || upload.SuccessfulRecords != 1 {
		t.Errorf("upload = %s %d", upload.Status, upload.SuccessfulRecords)
	}
}

func TestProcess_UnreadableFileFails(t *testing.T) {
	f := newFixture(t)
	file := csvFile("broken.xlsx", "definitely not a workbook")
	file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	upload := f.acceptAndProcess(t, file)

	if upload.Status != entity.StatusFailed {
		t.Fatalf("status = %s, want failed", upload.Status)
	}
	if len(upload.Errors) != 1 || upload.Errors[0].Row != 0 || !strings.HasPrefix(upload.Errors[0].Message, "File processing failed: ") {
		t.Errorf("errors = %+v", upload.Errors)
	}
}

func TestProcess_TerminalUploadIsNotReprocessed(t *testing.T) {
	f := newFixture(t)
	upload := f.acceptAndProcess(t, csvFile("ok.csv", header+"Ada,Lovelace,ada@example.com,password1,Developer\n"))

	if err := f.svc.Process(context.Background(), upload.ID); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if again := f.repo.get(t, upload.ID); again.SuccessfulRecords != 1 || len(f.notifier.kinds) != 1 {
		t.Errorf("second run changed the upload: %+v", again)
	}
}

func TestSweepStuck(t *testing.T) {
	f := newFixture(t)
	accepted, appErr := f.svc.Accept(context.Background(), f.manager, csvFile("slow.csv", header))
	if appErr != nil {
		t.Fatal(appErr)
	}
	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := f.svc.SweepStuck(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("SweepStuck() = %d, %v; want 1", n, err)
	}
	got := f.repo.get(t, accepted.UploadID)
	if got.Status != entity.StatusFailed || got.Errors[0].Message != "Processing timed out" {
		t.Errorf("upload = %s %+v", got.Status, got.Errors)
	}
}

// =============================================================================
// Queries
// =============================================================================

func TestUploadAccessRules(t *testing.T) {
	f := newFixture(t)
	upload := f.acceptAndProcess(t, csvFile("team.csv", header+"Bad,Email,nope,password1,Developer\n"))

	_, appErr := f.svc.Get(context.Background(), f.dev, upload.ID)
	assertAppError(t, appErr, errors.ErrForbidden, "You can only view your own uploads")

	_, appErr = f.svc.Download(context.Background(), f.dev, upload.ID)
	assertAppError(t, appErr, errors.ErrForbidden, "You can only download your own files")

	_, appErr = f.svc.Errors(context.Background(), f.dev, upload.ID, params.QueryParams{PageNumber: 1, PageSize: 20})
	assertAppError(t, appErr, errors.ErrForbidden, "You can only view your own upload errors")

	appErr = f.svc.Delete(context.Background(), f.dev, upload.ID)
	assertAppError(t, appErr, errors.ErrForbidden, "You can only delete your own uploads")

	_, appErr = f.svc.Get(context.Background(), f.manager, uuid.New())
	assertAppError(t, appErr, errors.ErrNotFound, "Upload not found")

	page, appErr := f.svc.History(context.Background(), f.dev, "", params.QueryParams{PageNumber: 1, PageSize: 10})
	if appErr != nil || len(page.Items) != 0 {
		t.Errorf("developer history = %v, %v; want empty", page, appErr)
	}
	page, appErr = f.svc.History(context.Background(), f.manager, "partial", params.QueryParams{PageNumber: 1, PageSize: 10})
	if appErr != nil || len(page.Items) != 1 {
		t.Errorf("manager history = %v, %v; want one upload", page, appErr)
	}
}

func TestErrorsPagination(t *testing.T) {
	f := newFixture(t)
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 25; i++ {
		b.WriteString("Bad,Row,invalid,password1,Developer\n")
	}
	upload := f.acceptAndProcess(t, csvFile("bad.csv", b.String()))

	result, appErr := f.svc.Errors(context.Background(), f.manager, upload.ID, params.QueryParams{PageNumber: 2, PageSize: 20})
	if appErr != nil {
		t.Fatalf("Errors() error = %v", appErr)
	}
	if len(result.Data.Errors) != 5 || result.Data.Errors[0].Row != 22 {
		t.Errorf("page 2 = %d errors starting at row %d", len(result.Data.Errors), result.Data.Errors[0].Row)
	}
	if result.Pagination.TotalItems != 25 || result.Pagination.TotalPages != 2 || result.Pagination.HasNext {
		t.Errorf("pagination = %+v", result.Pagination)
	}
	if result.Data.UploadInfo.FileName != "bad.csv" {
		t.Errorf("uploadInfo = %+v", result.Data.UploadInfo)
	}
}

func TestDownloadAndDelete(t *testing.T) {
	f := newFixture(t)
	content := header + "Ada,Lovelace,ada@example.com,password1,Developer\n"
	upload := f.acceptAndProcess(t, csvFile("ok.csv", content))

	file, appErr := f.svc.Download(context.Background(), f.manager, upload.ID)
	if appErr != nil {
		t.Fatalf("Download() error = %v", appErr)
	}
	body, err := io.ReadAll(file.Body)
	_ = file.Body.Close()
	if err != nil || string(body) != content {
		t.Errorf("Download() body = %q, %v", body, err)
	}
	if file.FileName != "ok.csv" || file.ContentType != "text/csv" {
		t.Errorf("Download() = %s %s", file.FileName, file.ContentType)
	}

	if appErr := f.svc.Delete(context.Background(), f.manager, upload.ID); appErr != nil {
		t.Fatalf("Delete() error = %v", appErr)
	}
	if n := storedFiles(t, f.dir); n != 0 {
		t.Errorf("stored files after delete = %d", n)
	}
	_, appErr = f.svc.Get(context.Background(), f.manager, upload.ID)
	assertAppError(t, appErr, errors.ErrNotFound, "Upload not found")
}
