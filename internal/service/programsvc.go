package service

import (
	"context"

	"scholarshipserver/internal/domain"
)

type ProgramsStore interface {
	CreateProgram(ctx context.Context, in domain.ProgramInput) (domain.Program, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	UpdateProgram(ctx context.Context, id string, in domain.ProgramInput) (domain.Program, error)
	DeleteProgram(ctx context.Context, id string) error
}

type ProgramService struct {
	Programs ProgramsStore
}

func (s *ProgramService) Create(ctx context.Context, in domain.ProgramInput) (domain.Program, error) {
	return s.Programs.CreateProgram(ctx, in)
}

func (s *ProgramService) List(ctx context.Context) ([]domain.Program, error) {
	return s.Programs.ListPrograms(ctx)
}

func (s *ProgramService) Update(ctx context.Context, id string, in domain.ProgramInput) (domain.Program, error) {
	return s.Programs.UpdateProgram(ctx, id, in)
}

func (s *ProgramService) Delete(ctx context.Context, id string) error {
	return s.Programs.DeleteProgram(ctx, id)
}
