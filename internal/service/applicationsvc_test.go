package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"scholarshipserver/internal/domain"
)

type stubApplicationsStore struct {
	t *testing.T

	createApplicationFunc         func(context.Context, string, string, domain.ApplicationForm) (domain.Application, error)
	getApplicationWithProgramFunc func(context.Context, string) (domain.ApplicationWithProgram, error)
	listByApplicantFunc           func(context.Context, string) ([]domain.ApplicationWithProgram, error)
	listApplicationsFunc          func(context.Context) ([]domain.ApplicationDetail, error)
	setApplicationStatusFunc      func(context.Context, string, domain.ApplicationStatus) error
	deleteApplicationFunc         func(context.Context, string) error
}

func (s *stubApplicationsStore) CreateApplication(ctx context.Context, programID, applicantID string, form domain.ApplicationForm) (domain.Application, error) {
	if s.createApplicationFunc != nil {
		return s.createApplicationFunc(ctx, programID, applicantID, form)
	}
	s.t.Fatalf("CreateApplication called unexpectedly")
	return domain.Application{}, errors.New("unexpected call")
}

func (s *stubApplicationsStore) GetApplicationWithProgram(ctx context.Context, id string) (domain.ApplicationWithProgram, error) {
	if s.getApplicationWithProgramFunc != nil {
		return s.getApplicationWithProgramFunc(ctx, id)
	}
	s.t.Fatalf("GetApplicationWithProgram called unexpectedly")
	return domain.ApplicationWithProgram{}, errors.New("unexpected call")
}

func (s *stubApplicationsStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.ApplicationWithProgram, error) {
	if s.listByApplicantFunc != nil {
		return s.listByApplicantFunc(ctx, applicantID)
	}
	s.t.Fatalf("ListApplicationsByApplicant called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubApplicationsStore) ListApplications(ctx context.Context) ([]domain.ApplicationDetail, error) {
	if s.listApplicationsFunc != nil {
		return s.listApplicationsFunc(ctx)
	}
	s.t.Fatalf("ListApplications called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubApplicationsStore) SetApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	if s.setApplicationStatusFunc != nil {
		return s.setApplicationStatusFunc(ctx, id, status)
	}
	s.t.Fatalf("SetApplicationStatus called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubApplicationsStore) DeleteApplication(ctx context.Context, id string) error {
	if s.deleteApplicationFunc != nil {
		return s.deleteApplicationFunc(ctx, id)
	}
	s.t.Fatalf("DeleteApplication called unexpectedly")
	return errors.New("unexpected call")
}

type stubProgramLookup struct {
	getBySequenceFunc func(context.Context, int64) (domain.Program, error)
}

func (s *stubProgramLookup) GetProgramBySequence(ctx context.Context, programID int64) (domain.Program, error) {
	return s.getBySequenceFunc(ctx, programID)
}

func TestApplicationServiceApplyUnknownProgramPersistsNothing(t *testing.T) {
	apps := &stubApplicationsStore{t: t} // CreateApplication would t.Fatal
	programs := &stubProgramLookup{
		getBySequenceFunc: func(context.Context, int64) (domain.Program, error) {
			return domain.Program{}, domain.ErrNotFound
		},
	}
	svc := &ApplicationService{Applications: apps, Programs: programs}

	_, err := svc.Apply(context.Background(), "user-1", 42, domain.ApplicationForm{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplicationServiceApplyResolvesSequenceToProgram(t *testing.T) {
	programs := &stubProgramLookup{
		getBySequenceFunc: func(_ context.Context, programID int64) (domain.Program, error) {
			if programID != 7 {
				t.Fatalf("unexpected sequence lookup: %d", programID)
			}
			return domain.Program{ID: "prog-uuid", ProgramID: 7, Title: "STEM Excellence"}, nil
		},
	}
	apps := &stubApplicationsStore{
		t: t,
		createApplicationFunc: func(_ context.Context, programID, applicantID string, form domain.ApplicationForm) (domain.Application, error) {
			if programID != "prog-uuid" {
				t.Fatalf("apply must persist the program's surrogate id, got %q", programID)
			}
			if applicantID != "user-1" {
				t.Fatalf("unexpected applicant: %q", applicantID)
			}
			return domain.Application{
				ID:            "app-uuid",
				ApplicationID: 1,
				ProgramID:     programID,
				ApplicantID:   applicantID,
				FullName:      form.FullName,
				Status:        domain.StatusPending,
			}, nil
		},
	}
	svc := &ApplicationService{Applications: apps, Programs: programs}

	app, err := svc.Apply(context.Background(), "user-1", 7, domain.ApplicationForm{FullName: "Alice A."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != domain.StatusPending {
		t.Fatalf("new application must be pending, got %s", app.Status)
	}
}

func TestApplicationServiceUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := &ApplicationService{Applications: &stubApplicationsStore{t: t}}

	_, err := svc.UpdateStatus(context.Background(), "app-1", domain.ApplicationStatus("APPROVED"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if _, ok := verr.Fields["status"]; !ok {
		t.Fatalf("expected status field error, got %v", verr.Fields)
	}
}

func TestApplicationServiceUpdateStatusReturnsJoinedRow(t *testing.T) {
	var setID string
	var setStatus domain.ApplicationStatus
	apps := &stubApplicationsStore{
		t: t,
		setApplicationStatusFunc: func(_ context.Context, id string, status domain.ApplicationStatus) error {
			setID, setStatus = id, status
			return nil
		},
		getApplicationWithProgramFunc: func(_ context.Context, id string) (domain.ApplicationWithProgram, error) {
			return domain.ApplicationWithProgram{
				Application: domain.Application{ID: id, Status: domain.StatusAccepted},
				Program:     domain.Program{ID: "prog-1", Title: "STEM Excellence"},
			}, nil
		},
	}
	svc := &ApplicationService{Applications: apps}

	got, err := svc.UpdateStatus(context.Background(), "app-1", domain.StatusAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setID != "app-1" || setStatus != domain.StatusAccepted {
		t.Fatalf("unexpected store call: %s %s", setID, setStatus)
	}
	if got.Program.Title != "STEM Excellence" {
		t.Fatalf("expected program joined in, got %+v", got)
	}
}

// Concurrent applies must each get their own application id, matching
// the store's atomic sequence upsert.
func TestApplicationServiceApplyConcurrentSequenceDistinct(t *testing.T) {
	var counter int64
	programs := &stubProgramLookup{
		getBySequenceFunc: func(context.Context, int64) (domain.Program, error) {
			return domain.Program{ID: "prog-uuid", ProgramID: 1}, nil
		},
	}
	apps := &stubApplicationsStore{
		t: t,
		createApplicationFunc: func(_ context.Context, programID, applicantID string, form domain.ApplicationForm) (domain.Application, error) {
			return domain.Application{
				ID:            uuid.NewString(),
				ApplicationID: atomic.AddInt64(&counter, 1),
				ProgramID:     programID,
				ApplicantID:   applicantID,
				Status:        domain.StatusPending,
			}, nil
		},
	}
	svc := &ApplicationService{Applications: apps, Programs: programs}

	const n = 50
	results := make([]domain.Application, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app, err := svc.Apply(context.Background(), "user-1", 1, domain.ApplicationForm{})
			if err != nil {
				t.Errorf("apply %d: %v", i, err)
				return
			}
			results[i] = app
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, app := range results {
		if app.ApplicationID == 0 {
			t.Fatalf("missing application id in %+v", app)
		}
		if seen[app.ApplicationID] {
			t.Fatalf("duplicate application id %d", app.ApplicationID)
		}
		seen[app.ApplicationID] = true
	}
}

func TestAdminServiceDeleteUserWithApplications(t *testing.T) {
	svc := &AdminService{
		Users: &stubAdminUsersStore{t: t},
		Applications: &stubApplicationCounter{
			countByApplicantFunc: func(context.Context, string) (int64, error) { return 3, nil },
		},
	}

	err := svc.DeleteUser(context.Background(), "user-1")
	if !errors.Is(err, domain.ErrUserHasApplications) {
		t.Fatalf("expected user-has-applications, got %v", err)
	}
}

func TestAdminServiceDeleteUserWithoutApplications(t *testing.T) {
	deleted := false
	svc := &AdminService{
		Users: &stubAdminUsersStore{
			t: t,
			deleteUserFunc: func(_ context.Context, userID string) error {
				deleted = userID == "user-1"
				return nil
			},
		},
		Applications: &stubApplicationCounter{
			countByApplicantFunc: func(context.Context, string) (int64, error) { return 0, nil },
		},
	}

	if err := svc.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatalf("user was not deleted")
	}
}

func TestAdminServiceSetUserRoleRejectsUnknownRole(t *testing.T) {
	svc := &AdminService{Users: &stubAdminUsersStore{t: t}}

	_, err := svc.SetUserRole(context.Background(), "user-1", domain.Role("SUPERUSER"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminServiceDashboardCounts(t *testing.T) {
	svc := &AdminService{
		Users: &stubAdminUsersStore{
			t: t,
			countUsersByRoleFunc: func(_ context.Context, role domain.Role) (int64, error) {
				if role != domain.RoleUser {
					t.Fatalf("dashboard must count applicants only, got %s", role)
				}
				return 12, nil
			},
		},
		Applications: &stubApplicationCounter{
			countFunc: func(context.Context) (int64, error) { return 30, nil },
		},
		Programs: &stubProgramCounter{
			countFunc: func(context.Context) (int64, error) { return 4, nil },
		},
	}

	counts, err := svc.DashboardCounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.DashboardCounts{Users: 12, Programs: 4, Applications: 30}
	if counts != want {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

type stubAdminUsersStore struct {
	t *testing.T

	listUsersByRoleFunc  func(context.Context, domain.Role) ([]domain.User, error)
	setUserRoleFunc      func(context.Context, string, domain.Role) (domain.User, error)
	deleteUserFunc       func(context.Context, string) error
	countUsersByRoleFunc func(context.Context, domain.Role) (int64, error)
}

func (s *stubAdminUsersStore) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if s.listUsersByRoleFunc != nil {
		return s.listUsersByRoleFunc(ctx, role)
	}
	s.t.Fatalf("ListUsersByRole called unexpectedly")
	return nil, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) SetUserRole(ctx context.Context, userID string, role domain.Role) (domain.User, error) {
	if s.setUserRoleFunc != nil {
		return s.setUserRoleFunc(ctx, userID, role)
	}
	s.t.Fatalf("SetUserRole called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubAdminUsersStore) DeleteUser(ctx context.Context, userID string) error {
	if s.deleteUserFunc != nil {
		return s.deleteUserFunc(ctx, userID)
	}
	s.t.Fatalf("DeleteUser called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubAdminUsersStore) CountUsersByRole(ctx context.Context, role domain.Role) (int64, error) {
	if s.countUsersByRoleFunc != nil {
		return s.countUsersByRoleFunc(ctx, role)
	}
	s.t.Fatalf("CountUsersByRole called unexpectedly")
	return 0, errors.New("unexpected call")
}

type stubApplicationCounter struct {
	countFunc            func(context.Context) (int64, error)
	countByApplicantFunc func(context.Context, string) (int64, error)
}

func (s *stubApplicationCounter) CountApplications(ctx context.Context) (int64, error) {
	return s.countFunc(ctx)
}

func (s *stubApplicationCounter) CountApplicationsByApplicant(ctx context.Context, applicantID string) (int64, error) {
	return s.countByApplicantFunc(ctx, applicantID)
}

type stubProgramCounter struct {
	countFunc func(context.Context) (int64, error)
}

func (s *stubProgramCounter) CountPrograms(ctx context.Context) (int64, error) {
	return s.countFunc(ctx)
}
