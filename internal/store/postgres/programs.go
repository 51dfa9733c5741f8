package postgres

import (
	"context"
	"errors"
	"fmt"

	"scholarshipserver/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgramsStore struct {
	pool *pgxpool.Pool
}

func NewProgramsStore(pool *pgxpool.Pool) *ProgramsStore {
	return &ProgramsStore{pool: pool}
}

const programColumns = `id, program_id, title, description, start_date, end_date,
	orientation_date, orientation_time, orientation_location, orientation_link,
	orientation_agenda, created_at, updated_at`

func (s *ProgramsStore) CreateProgram(ctx context.Context, in domain.ProgramInput) (domain.Program, error) {
	agenda, err := agendaToJSON(in.OrientationAgenda)
	if err != nil {
		return domain.Program{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Program{}, fmt.Errorf("begin create program: %w", err)
	}
	defer tx.Rollback(ctx)

	seq, err := nextSequence(ctx, tx, domain.EntityProgram)
	if err != nil {
		return domain.Program{}, err
	}

	const q = `
		INSERT INTO programs (
			id, program_id, title, description, start_date, end_date,
			orientation_date, orientation_time, orientation_location,
			orientation_link, orientation_agenda
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + programColumns

	p, err := scanProgramRow(tx.QueryRow(ctx, q,
		uuid.NewString(), seq, in.Title, in.Description, in.StartDate, in.EndDate,
		in.OrientationDate, in.OrientationTime, in.OrientationLocation,
		in.OrientationLink, agenda,
	))
	if err != nil {
		return domain.Program{}, fmt.Errorf("create program: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Program{}, fmt.Errorf("commit create program: %w", err)
	}
	return p, nil
}

// GetProgramBySequence looks a program up by its human-facing sequential
// id, the one the apply route carries.
func (s *ProgramsStore) GetProgramBySequence(ctx context.Context, programID int64) (domain.Program, error) {
	const q = `SELECT ` + programColumns + ` FROM programs WHERE program_id = $1`
	p, err := scanProgramRow(s.pool.QueryRow(ctx, q, programID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Program{}, domain.ErrNotFound
		}
		return domain.Program{}, fmt.Errorf("get program by sequence: %w", err)
	}
	return p, nil
}

func (s *ProgramsStore) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	const q = `SELECT ` + programColumns + ` FROM programs ORDER BY program_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []domain.Program
	for rows.Next() {
		p, err := scanProgramRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

func (s *ProgramsStore) UpdateProgram(ctx context.Context, id string, in domain.ProgramInput) (domain.Program, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Program{}, domain.ErrNotFound
	}

	agenda, err := agendaToJSON(in.OrientationAgenda)
	if err != nil {
		return domain.Program{}, err
	}

	const q = `
		UPDATE programs
		SET title = $2, description = $3, start_date = $4, end_date = $5,
		    orientation_date = $6, orientation_time = $7, orientation_location = $8,
		    orientation_link = $9, orientation_agenda = $10, updated_at = now()
		WHERE id = $1
		RETURNING ` + programColumns

	p, err := scanProgramRow(s.pool.QueryRow(ctx, q, id,
		in.Title, in.Description, in.StartDate, in.EndDate,
		in.OrientationDate, in.OrientationTime, in.OrientationLocation,
		in.OrientationLink, agenda,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Program{}, domain.ErrNotFound
		}
		return domain.Program{}, fmt.Errorf("update program: %w", err)
	}
	return p, nil
}

func (s *ProgramsStore) DeleteProgram(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ProgramsStore) CountPrograms(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM programs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return n, nil
}

func scanProgramRow(row pgx.Row) (domain.Program, error) {
	var (
		p         domain.Program
		idUUID    pgtype.UUID
		agendaRaw []byte
	)
	err := row.Scan(&idUUID, &p.ProgramID, &p.Title, &p.Description, &p.StartDate, &p.EndDate,
		&p.OrientationDate, &p.OrientationTime, &p.OrientationLocation, &p.OrientationLink,
		&agendaRaw, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Program{}, err
	}
	p.ID = uuidOrEmpty(idUUID)
	p.OrientationAgenda, err = agendaFromJSON(agendaRaw)
	if err != nil {
		return domain.Program{}, err
	}
	return p, nil
}
