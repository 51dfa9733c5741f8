package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"scholarshipserver/internal/domain"
)

type applyRequest struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	DateOfBirth       string `json:"dateOfBirth"`
	Institution       string `json:"institution"`
	GPA               string `json:"gpa"`
	PersonalStatement string `json:"personalStatement"`
}

func (a *api) handleApplicationsApply(w http.ResponseWriter, r *http.Request) {
	// The path segment is the program's sequential id; anything that is
	// not a positive integer cannot name a program.
	programSeq, err := strconv.ParseInt(r.PathValue("programId"), 10, 64)
	if err != nil || programSeq < 1 {
		WriteDomainError(w, domain.ErrNotFound)
		return
	}

	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = normalizeEmail(req.Email)
	if req.FullName == "" {
		fields["fullName"] = "required"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email"
	}
	if strings.TrimSpace(req.DateOfBirth) == "" {
		fields["dateOfBirth"] = "required"
	}
	if strings.TrimSpace(req.Institution) == "" {
		fields["institution"] = "required"
	}
	if strings.TrimSpace(req.GPA) == "" {
		fields["gpa"] = "required"
	}
	if strings.TrimSpace(req.PersonalStatement) == "" {
		fields["personalStatement"] = "required"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	app, err := a.applicationSvc.Apply(r.Context(), u.ID, programSeq, domain.ApplicationForm{
		FullName:          req.FullName,
		Email:             req.Email,
		DateOfBirth:       req.DateOfBirth,
		Institution:       req.Institution,
		GPA:               req.GPA,
		PersonalStatement: req.PersonalStatement,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toApplicationView(app))
}

func (a *api) handleApplicationsMy(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	apps, err := a.applicationSvc.ListMine(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]applicationView, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationWithProgramView(app))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleApplicationsList(w http.ResponseWriter, r *http.Request) {
	apps, err := a.applicationSvc.ListAll(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]applicationView, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationDetailView(app))
	}
	WriteJSON(w, http.StatusOK, out)
}

type applicationStatusRequest struct {
	Status string `json:"status"`
}

func (a *api) handleApplicationsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req applicationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	app, err := a.applicationSvc.UpdateStatus(r.Context(), id, domain.ApplicationStatus(req.Status))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toApplicationWithProgramView(app))
}

func (a *api) handleApplicationsDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.applicationSvc.Delete(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}
