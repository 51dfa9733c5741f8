package service

import (
	"context"

	"scholarshipserver/internal/domain"
)

type AdminUsersStore interface {
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	SetUserRole(ctx context.Context, userID string, role domain.Role) (domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
	CountUsersByRole(ctx context.Context, role domain.Role) (int64, error)
}

type ApplicationCounter interface {
	CountApplications(ctx context.Context) (int64, error)
	CountApplicationsByApplicant(ctx context.Context, applicantID string) (int64, error)
}

type ProgramCounter interface {
	CountPrograms(ctx context.Context) (int64, error)
}

type AdminService struct {
	Users        AdminUsersStore
	Applications ApplicationCounter
	Programs     ProgramCounter
}

// ListUsers returns applicant accounts; admins do not appear in the
// admin console's user list.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Users.ListUsersByRole(ctx, domain.RoleUser)
}

// DeleteUser refuses while the user still owns applications, so no
// application is ever left pointing at a missing applicant.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	n, err := s.Applications.CountApplicationsByApplicant(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrUserHasApplications
	}
	return s.Users.DeleteUser(ctx, userID)
}

func (s *AdminService) SetUserRole(ctx context.Context, userID string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, domain.NewValidationError(map[string]string{
			"role": "must be one of USER, ADMIN",
		})
	}
	return s.Users.SetUserRole(ctx, userID, role)
}

func (s *AdminService) DashboardCounts(ctx context.Context) (domain.DashboardCounts, error) {
	users, err := s.Users.CountUsersByRole(ctx, domain.RoleUser)
	if err != nil {
		return domain.DashboardCounts{}, err
	}
	applications, err := s.Applications.CountApplications(ctx)
	if err != nil {
		return domain.DashboardCounts{}, err
	}
	programs, err := s.Programs.CountPrograms(ctx)
	if err != nil {
		return domain.DashboardCounts{}, err
	}
	return domain.DashboardCounts{
		Users:        users,
		Programs:     programs,
		Applications: applications,
	}, nil
}

func (s *AdminService) CountUsers(ctx context.Context) (int64, error) {
	return s.Users.CountUsersByRole(ctx, domain.RoleUser)
}

func (s *AdminService) CountApplications(ctx context.Context) (int64, error) {
	return s.Applications.CountApplications(ctx)
}

func (s *AdminService) CountPrograms(ctx context.Context) (int64, error) {
	return s.Programs.CountPrograms(ctx)
}
