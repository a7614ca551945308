package httpserver

import (
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/service"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// createComment handles POST /posts/{postID}/comments. The comment row
// and the post's counter bump commit together.
func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createCommentRequest
	if !s.decodeValidJSON(w, r, &req) {
		return
	}

	var comment *domain.Comment
	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		var txErr error
		comment, txErr = s.comments.Create(r.Context(), tx, service.CreateCommentInput{
			PostID:   postID,
			AuthorID: principal.ID,
			Content:  req.Content,
		})
		return txErr
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.comments.NotifyCreated(r.Context(), comment)
	writeJSON(w, http.StatusCreated, comment)
}

// listComments handles GET /posts/{postID}/comments.
func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.comments.ListByPost(r.Context(), s.engine, req, postID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// deleteComment handles DELETE /comments/{commentID}.
func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(w, r, "commentID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		return s.comments.Delete(r.Context(), tx, commentID, principal.ID, principal.Role)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
