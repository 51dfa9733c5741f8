package service

import (
	"context"

	"scholarshipserver/internal/domain"
)

type ApplicationsStore interface {
	CreateApplication(ctx context.Context, programID, applicantID string, form domain.ApplicationForm) (domain.Application, error)
	GetApplicationWithProgram(ctx context.Context, id string) (domain.ApplicationWithProgram, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.ApplicationWithProgram, error)
	ListApplications(ctx context.Context) ([]domain.ApplicationDetail, error)
	SetApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error
	DeleteApplication(ctx context.Context, id string) error
}

type ProgramLookup interface {
	GetProgramBySequence(ctx context.Context, programID int64) (domain.Program, error)
}

type ApplicationService struct {
	Applications ApplicationsStore
	Programs     ProgramLookup
}

// Apply submits an application for the program with the given
// sequential id. Form fields are snapshotted as given; nothing is
// persisted if the program lookup fails.
func (s *ApplicationService) Apply(ctx context.Context, applicantID string, programSeq int64, form domain.ApplicationForm) (domain.Application, error) {
	program, err := s.Programs.GetProgramBySequence(ctx, programSeq)
	if err != nil {
		return domain.Application{}, err
	}
	return s.Applications.CreateApplication(ctx, program.ID, applicantID, form)
}

func (s *ApplicationService) ListMine(ctx context.Context, applicantID string) ([]domain.ApplicationWithProgram, error) {
	return s.Applications.ListApplicationsByApplicant(ctx, applicantID)
}

func (s *ApplicationService) ListAll(ctx context.Context) ([]domain.ApplicationDetail, error) {
	return s.Applications.ListApplications(ctx)
}

// UpdateStatus sets the status and returns the application with its
// program joined. Transitions are unrestricted between the three
// statuses; an admin may revert a decision.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) (domain.ApplicationWithProgram, error) {
	if !status.Valid() {
		return domain.ApplicationWithProgram{}, domain.NewValidationError(map[string]string{
			"status": "must be one of PENDING, ACCEPTED, REJECTED",
		})
	}
	if err := s.Applications.SetApplicationStatus(ctx, id, status); err != nil {
		return domain.ApplicationWithProgram{}, err
	}
	return s.Applications.GetApplicationWithProgram(ctx, id)
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	return s.Applications.DeleteApplication(ctx, id)
}
