package httpserver

import (
	"net/http"

	"github.com/jackc/pgx/v5"
)

// requestFollow handles POST /users/{userID}/follow: the authenticated
// user requests to follow userID. The relation starts unconfirmed.
func (s *Server) requestFollow(w http.ResponseWriter, r *http.Request) {
	followeeID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	relation, err := s.follows.Request(r.Context(), principal.ID, followeeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, relation)
}

// confirmFollow handles POST /users/{userID}/follow/confirm: the
// authenticated user accepts the pending request from userID. The flag
// flip and both counter bumps commit together.
func (s *Server) confirmFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		return s.follows.Confirm(r.Context(), tx, followerID, principal.ID, principal.ID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	relation, err := s.follows.Get(r.Context(), followerID, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.follows.NotifyConfirmed(r.Context(), relation)
	writeJSON(w, http.StatusOK, relation)
}

// unfollow handles DELETE /users/{userID}/follow: the authenticated
// user stops following userID. Counters move back only for confirmed
// relations.
func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	followeeID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		return s.follows.Unfollow(r.Context(), tx, principal.ID, followeeID, principal.ID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listFollowers handles GET /users/{userID}/followers.
func (s *Server) listFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.follows.ListFollowers(r.Context(), s.engine, req, userID, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// listFollowing handles GET /users/{userID}/following.
func (s *Server) listFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "userID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.follows.ListFollowing(r.Context(), s.engine, req, userID, principal.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
