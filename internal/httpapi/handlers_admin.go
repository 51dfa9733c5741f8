package httpapi

import (
	"net/http"

	"scholarshipserver/internal/domain"
)

func (a *api) handleAdminUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.adminSvc.ListUsers(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleAdminUsersDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.adminSvc.DeleteUser(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (a *api) handleAdminUsersSetRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	u, err := a.adminSvc.SetUserRole(r.Context(), id, domain.Role(req.Role))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toUserView(u))
}

func (a *api) handleAdminDashboardCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := a.adminSvc.DashboardCounts(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int64{
		"users":        counts.Users,
		"programs":     counts.Programs,
		"applications": counts.Applications,
	})
}

func (a *api) handleAdminUsersCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.adminSvc.CountUsers(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (a *api) handleAdminApplicationsCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.adminSvc.CountApplications(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (a *api) handleAdminProgramsCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.adminSvc.CountPrograms(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}
