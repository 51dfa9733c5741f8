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

type ApplicationsStore struct {
	pool *pgxpool.Pool
}

func NewApplicationsStore(pool *pgxpool.Pool) *ApplicationsStore {
	return &ApplicationsStore{pool: pool}
}

const applicationColumns = `a.id, a.application_id, a.program_id, a.applicant_id,
	a.full_name, a.email, a.date_of_birth, a.institution, a.gpa,
	a.personal_statement, a.status, a.created_at, a.updated_at`

const joinedProgramColumns = `p.id, p.program_id, p.title, p.description, p.start_date, p.end_date,
	p.orientation_date, p.orientation_time, p.orientation_location, p.orientation_link,
	p.orientation_agenda, p.created_at, p.updated_at`

func (s *ApplicationsStore) CreateApplication(ctx context.Context, programID, applicantID string, form domain.ApplicationForm) (domain.Application, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Application{}, fmt.Errorf("begin create application: %w", err)
	}
	defer tx.Rollback(ctx)

	seq, err := nextSequence(ctx, tx, domain.EntityApplication)
	if err != nil {
		return domain.Application{}, err
	}

	const q = `
		INSERT INTO applications (
			id, application_id, program_id, applicant_id,
			full_name, email, date_of_birth, institution, gpa, personal_statement
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, application_id, program_id, applicant_id,
			full_name, email, date_of_birth, institution, gpa,
			personal_statement, status, created_at, updated_at
	`

	app, err := scanApplicationRow(tx.QueryRow(ctx, q,
		uuid.NewString(), seq, programID, applicantID,
		form.FullName, form.Email, form.DateOfBirth, form.Institution,
		form.GPA, form.PersonalStatement,
	))
	if err != nil {
		return domain.Application{}, fmt.Errorf("create application: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Application{}, fmt.Errorf("commit create application: %w", err)
	}
	return app, nil
}

func (s *ApplicationsStore) GetApplicationWithProgram(ctx context.Context, id string) (domain.ApplicationWithProgram, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ApplicationWithProgram{}, domain.ErrNotFound
	}

	q := `
		SELECT ` + applicationColumns + `, ` + joinedProgramColumns + `
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		WHERE a.id = $1
	`
	app, err := scanApplicationWithProgramRow(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ApplicationWithProgram{}, domain.ErrNotFound
		}
		return domain.ApplicationWithProgram{}, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *ApplicationsStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]domain.ApplicationWithProgram, error) {
	if _, err := uuid.Parse(applicantID); err != nil {
		return nil, nil
	}

	q := `
		SELECT ` + applicationColumns + `, ` + joinedProgramColumns + `
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		WHERE a.applicant_id = $1
		ORDER BY a.application_id
	`
	rows, err := s.pool.Query(ctx, q, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list applications by applicant: %w", err)
	}
	defer rows.Close()

	var apps []domain.ApplicationWithProgram
	for rows.Next() {
		app, err := scanApplicationWithProgramRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications by applicant: %w", err)
	}
	return apps, nil
}

func (s *ApplicationsStore) ListApplications(ctx context.Context) ([]domain.ApplicationDetail, error) {
	q := `
		SELECT ` + applicationColumns + `, ` + joinedProgramColumns + `,
		       u.id, u.name, u.email
		FROM applications a
		JOIN programs p ON p.id = a.program_id
		JOIN users u ON u.id = a.applicant_id
		ORDER BY a.application_id
	`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []domain.ApplicationDetail
	for rows.Next() {
		var (
			detail        domain.ApplicationDetail
			applicantUUID pgtype.UUID
		)
		sc := applicationScanner{app: &detail.Application, prog: &detail.Program}
		dests := append(sc.dests(), &applicantUUID, &detail.Applicant.Name, &detail.Applicant.Email)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan application detail: %w", err)
		}
		if err := sc.finish(); err != nil {
			return nil, err
		}
		detail.Applicant.ID = uuidOrEmpty(applicantUUID)
		apps = append(apps, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func (s *ApplicationsStore) SetApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	const q = `
		UPDATE applications
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, id, string(status))
	if err != nil {
		return fmt.Errorf("set application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ApplicationsStore) DeleteApplication(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ApplicationsStore) CountApplications(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (s *ApplicationsStore) CountApplicationsByApplicant(ctx context.Context, applicantID string) (int64, error) {
	if _, err := uuid.Parse(applicantID); err != nil {
		return 0, nil
	}

	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM applications WHERE applicant_id = $1`, applicantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count applications by applicant: %w", err)
	}
	return n, nil
}

// applicationScanner gathers pgtype destinations for one row; prog is
// nil when the query has no program join.
type applicationScanner struct {
	app  *domain.Application
	prog *domain.Program

	idUUID        pgtype.UUID
	programUUID   pgtype.UUID
	applicantUUID pgtype.UUID
	status        string
	progIDUUID    pgtype.UUID
	agendaRaw     []byte
}

func (sc *applicationScanner) dests() []any {
	dests := []any{
		&sc.idUUID, &sc.app.ApplicationID, &sc.programUUID, &sc.applicantUUID,
		&sc.app.FullName, &sc.app.Email, &sc.app.DateOfBirth, &sc.app.Institution,
		&sc.app.GPA, &sc.app.PersonalStatement, &sc.status,
		&sc.app.CreatedAt, &sc.app.UpdatedAt,
	}
	if sc.prog != nil {
		dests = append(dests,
			&sc.progIDUUID, &sc.prog.ProgramID, &sc.prog.Title, &sc.prog.Description,
			&sc.prog.StartDate, &sc.prog.EndDate, &sc.prog.OrientationDate,
			&sc.prog.OrientationTime, &sc.prog.OrientationLocation,
			&sc.prog.OrientationLink, &sc.agendaRaw,
			&sc.prog.CreatedAt, &sc.prog.UpdatedAt,
		)
	}
	return dests
}

func (sc *applicationScanner) finish() error {
	sc.app.ID = uuidOrEmpty(sc.idUUID)
	sc.app.ProgramID = uuidOrEmpty(sc.programUUID)
	sc.app.ApplicantID = uuidOrEmpty(sc.applicantUUID)
	sc.app.Status = domain.ApplicationStatus(sc.status)
	if sc.prog != nil {
		sc.prog.ID = uuidOrEmpty(sc.progIDUUID)
		agenda, err := agendaFromJSON(sc.agendaRaw)
		if err != nil {
			return err
		}
		sc.prog.OrientationAgenda = agenda
	}
	return nil
}

func scanApplicationRow(row pgx.Row) (domain.Application, error) {
	var app domain.Application
	sc := applicationScanner{app: &app}
	if err := row.Scan(sc.dests()...); err != nil {
		return domain.Application{}, err
	}
	if err := sc.finish(); err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

func scanApplicationWithProgramRow(row pgx.Row) (domain.ApplicationWithProgram, error) {
	var out domain.ApplicationWithProgram
	sc := applicationScanner{app: &out.Application, prog: &out.Program}
	if err := row.Scan(sc.dests()...); err != nil {
		return domain.ApplicationWithProgram{}, err
	}
	if err := sc.finish(); err != nil {
		return domain.ApplicationWithProgram{}, err
	}
	return out, nil
}
