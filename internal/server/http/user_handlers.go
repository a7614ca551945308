package httpserver

import (
	"net/http"
)

// listUsers handles GET /users with the where__/order__ filter bag.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.users.List(r.Context(), s.engine, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// getUser handles GET /users/{userID}.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "userID")
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// deleteUser handles DELETE /users/{userID}.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.users.Delete(r.Context(), principal.ID, principal.Role, id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
