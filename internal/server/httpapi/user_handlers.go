package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	search := q.Get("search")

	res, err := s.users.List(r.Context(), search, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	users := make([]userDetailDTO, 0, len(res.Users))
	for _, u := range res.Users {
		users = append(users, toUserDetailDTO(u))
	}

	writePage(w, users, &pagination{
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	})
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"user": toUserDetailDTO(user)})
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "user updated successfully", map[string]any{"user": toUserDetailDTO(user)})
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "user deleted successfully", nil)
}
