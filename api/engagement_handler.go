package api

import (
	"net/http"

	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/m-im-ha/turbo-blog-practice/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type engagementHandler struct {
	responder  Responder
	logger     zerolog.Logger
	engagement *services.Engagement
}

func newEngagementHandler(engagement *services.Engagement) engagementHandler {
	logger := log.With().Str("handlerName", "engagementHandler").Logger()

	return engagementHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		engagement: engagement,
	}
}

// toggleLike likes the blog or takes the caller's like back
// @Summary Toggle like
// @Tags Likes
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} envelope "Like state after the toggle"
// @Failure 404 {object} errorBody "Blog not found"
// @Router /api/blog/{id}/like [post]
func (h engagementHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		blogID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.engagement.ToggleLike(r.Context(), blogID, principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "blog "+result.Action+" successfully.", result)
	}
}

func (h engagementHandler) getLikes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		likes, err := h.engagement.ListLikes(r.Context(), blogID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", likes)
	}
}

// createComment comments on the blog in the path
// @Summary Create comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 201 {object} envelope "Comment and the blog's comment count"
// @Failure 400 {object} errorBody "Validation failed"
// @Failure 404 {object} errorBody "Blog not found"
// @Router /api/blog/comment/{id} [post]
func (h engagementHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		blogID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.engagement.CreateComment(r.Context(), blogID, principal.ID, req.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, "Comment created successfully", result)
	}
}

func (h engagementHandler) getComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page := pagination.Comments.Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

		comments, err := h.engagement.ListComments(r.Context(), blogID, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", comments)
	}
}

// updateComment edits a comment. The path id is the comment's id here.
func (h engagementHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		commentID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.engagement.UpdateComment(r.Context(), commentID, principal.ID, req.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "Comment updated successfully", comment)
	}
}

func (h engagementHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		commentID, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		deleted, err := h.engagement.DeleteComment(r.Context(), commentID, principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "Comment deleted successfully", deleted)
	}
}
