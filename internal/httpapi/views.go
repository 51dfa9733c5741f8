package httpapi

import (
	"net/http"
	"time"

	"scholarshipserver/internal/domain"
)

type userView struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserView(u domain.User) userView {
	return userView{
		ID:        u.ID,
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type authResponse struct {
	userView
	Token string `json:"token"`
}

func writeAuthResponse(w http.ResponseWriter, status int, u domain.User, token string) {
	WriteJSON(w, status, authResponse{userView: toUserView(u), Token: token})
}

type programView struct {
	ID                  string              `json:"id"`
	ProgramID           int64               `json:"programId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate"`
	OrientationDate     string              `json:"orientationDate"`
	OrientationTime     string              `json:"orientationTime"`
	OrientationLocation string              `json:"orientationLocation"`
	OrientationLink     string              `json:"orientationLink"`
	OrientationAgenda   []domain.AgendaItem `json:"orientationAgenda"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

func toProgramView(p domain.Program) programView {
	agenda := p.OrientationAgenda
	if agenda == nil {
		agenda = []domain.AgendaItem{}
	}
	return programView{
		ID:                  p.ID,
		ProgramID:           p.ProgramID,
		Title:               p.Title,
		Description:         p.Description,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		OrientationDate:     p.OrientationDate,
		OrientationTime:     p.OrientationTime,
		OrientationLocation: p.OrientationLocation,
		OrientationLink:     p.OrientationLink,
		OrientationAgenda:   agenda,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toProgramViews(ps []domain.Program) []programView {
	out := make([]programView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProgramView(p))
	}
	return out
}

type applicantView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type applicationView struct {
	ID                string         `json:"id"`
	ApplicationID     int64          `json:"applicationId"`
	FullName          string         `json:"fullName"`
	Email             string         `json:"email"`
	DateOfBirth       string         `json:"dateOfBirth"`
	Institution       string         `json:"institution"`
	GPA               string         `json:"gpa"`
	PersonalStatement string         `json:"personalStatement"`
	Status            string         `json:"status"`
	Program           *programView   `json:"program,omitempty"`
	Applicant         *applicantView `json:"applicant,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func toApplicationView(app domain.Application) applicationView {
	return applicationView{
		ID:                app.ID,
		ApplicationID:     app.ApplicationID,
		FullName:          app.FullName,
		Email:             app.Email,
		DateOfBirth:       app.DateOfBirth,
		Institution:       app.Institution,
		GPA:               app.GPA,
		PersonalStatement: app.PersonalStatement,
		Status:            string(app.Status),
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}
}

func toApplicationWithProgramView(app domain.ApplicationWithProgram) applicationView {
	v := toApplicationView(app.Application)
	program := toProgramView(app.Program)
	v.Program = &program
	return v
}

func toApplicationDetailView(app domain.ApplicationDetail) applicationView {
	v := toApplicationView(app.Application)
	program := toProgramView(app.Program)
	v.Program = &program
	v.Applicant = &applicantView{
		ID:    app.Applicant.ID,
		Name:  app.Applicant.Name,
		Email: app.Applicant.Email,
	}
	return v
}
