package httpapi

import (
	"net/http"
	"strings"

	"scholarshipserver/internal/domain"
)

type programRequest struct {
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate"`
	OrientationDate     string              `json:"orientationDate"`
	OrientationTime     string              `json:"orientationTime"`
	OrientationLocation string              `json:"orientationLocation"`
	OrientationLink     string              `json:"orientationLink"`
	OrientationAgenda   []domain.AgendaItem `json:"orientationAgenda"`
}

func (r programRequest) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(r.StartDate) == "" {
		fields["startDate"] = "required"
	}
	if strings.TrimSpace(r.EndDate) == "" {
		fields["endDate"] = "required"
	}
	return fields
}

func (r programRequest) toInput() domain.ProgramInput {
	return domain.ProgramInput{
		Title:               strings.TrimSpace(r.Title),
		Description:         r.Description,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		OrientationDate:     r.OrientationDate,
		OrientationTime:     r.OrientationTime,
		OrientationLocation: r.OrientationLocation,
		OrientationLink:     r.OrientationLink,
		OrientationAgenda:   r.OrientationAgenda,
	}
}

func (a *api) handleProgramsList(w http.ResponseWriter, r *http.Request) {
	programs, err := a.programSvc.List(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProgramViews(programs))
}

func (a *api) handleProgramsCreate(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	program, err := a.programSvc.Create(r.Context(), req.toInput())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toProgramView(program))
}

func (a *api) handleProgramsUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req programRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	program, err := a.programSvc.Update(r.Context(), id, req.toInput())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toProgramView(program))
}

func (a *api) handleProgramsDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.programSvc.Delete(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}
