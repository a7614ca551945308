package httpserver

import (
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/feedstack/social-feed-service/internal/domain"
	"github.com/feedstack/social-feed-service/internal/service"
)

type createPostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"max=10000"`
	Images  []string `json:"images" validate:"max=10,dive,required"`
}

type updatePostRequest struct {
	Title   *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string   `json:"content" validate:"omitempty,max=10000"`
	Images  *[]string `json:"images" validate:"omitempty,max=10,dive,required"`
}

// createPost handles POST /posts. The post row and its image rows are
// written in one transaction; the post.created event goes out after
// commit.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createPostRequest
	if !s.decodeValidJSON(w, r, &req) {
		return
	}

	var post *domain.Post
	err := s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
		var txErr error
		post, txErr = s.posts.Create(r.Context(), tx, service.CreatePostInput{
			AuthorID:   principal.ID,
			Title:      req.Title,
			Content:    req.Content,
			ImagePaths: req.Images,
		})
		return txErr
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.posts.NotifyCreated(r.Context(), post)
	writeJSON(w, http.StatusCreated, post)
}

// getPost handles GET /posts/{postID}.
func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "postID")
	if !ok {
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// listPosts handles GET /posts with the where__/order__ filter bag.
func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePagination(w, r)
	if !ok {
		return
	}

	result, err := s.posts.List(r.Context(), s.engine, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// updatePost handles PATCH /posts/{postID}. Replacing the image set
// runs in a transaction; title/content-only updates do not need one.
func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updatePostRequest
	if !s.decodeValidJSON(w, r, &req) {
		return
	}

	input := service.UpdatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		ImagePaths: req.Images,
	}

	var post *domain.Post
	var err error
	if req.Images != nil {
		err = s.db.WithTransaction(r.Context(), func(tx pgx.Tx) error {
			var txErr error
			post, txErr = s.posts.Update(r.Context(), tx, id, principal.ID, principal.Role, input)
			return txErr
		})
	} else {
		post, err = s.posts.Update(r.Context(), nil, id, principal.ID, principal.Role, input)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// deletePost handles DELETE /posts/{postID}.
func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	principal, ok := requesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.posts.Delete(r.Context(), id, principal.ID, principal.Role); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
