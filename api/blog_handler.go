package api

import (
	"net/http"

	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/m-im-ha/turbo-blog-practice/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	blogs     *services.Blogs
}

func newBlogHandler(blogs *services.Blogs) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		blogs:     blogs,
	}
}

// createBlog creates a blog for the caller
// @Summary Create blog
// @Description Creates a blog. Tags are attached in the background; the response echoes the requested names.
// @Tags Blogs
// @Accept json
// @Produce json
// @Success 201 {object} envelope "Created blog"
// @Failure 400 {object} errorBody "Validation failed"
// @Failure 401 {object} errorBody "Missing or invalid token"
// @Router /api/blogs [post]
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		var req createBlogRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.blogs.Create(r.Context(), principal.ID, services.CreateBlogInput{
			Title:   req.Title,
			Content: req.Content,
			Image:   req.Image,
			Tags:    req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, "blog created successfully", blog)
	}
}

// getAllBlogs lists blogs newest first
// @Summary List blogs
// @Tags Blogs
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size, at most 10"
// @Success 200 {object} envelope "Page of blogs"
// @Router /api/blogs [get]
func (h blogHandler) getAllBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pagination.Blogs.Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

		blogs, meta, err := h.blogs.List(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WritePage(w, blogs, meta, nil)
	}
}

// getBlog returns one blog with its latest comments
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} envelope "Blog"
// @Failure 400 {object} errorBody "Invalid id"
// @Failure 404 {object} errorBody "Blog not found"
// @Router /api/blogs/{id} [get]
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.blogs.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", blog)
	}
}

func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateBlogRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.blogs.Update(r.Context(), id, principal.ID, services.UpdateBlogInput{
			Title:   req.Title,
			Content: req.Content,
			Image:   req.Image,
			Tags:    req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "Blog updated successfully", blog)
	}
}

func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		deleted, err := h.blogs.Delete(r.Context(), id, principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "blog deleted successfully", deleted)
	}
}

type searchMeta struct {
	SearchQuery string `json:"searchQuery"`
}

type filterMeta struct {
	Filters blogFilters `json:"filters"`
}

type blogFilters struct {
	Tag    *string `json:"tag"`
	Author *string `json:"author"`
}

// searchBlogs matches q against titles and contents
// @Summary Search blogs
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} envelope "Page of matching blogs"
// @Failure 400 {object} errorBody "Search query is required"
// @Router /api/search [get]
func (h blogHandler) searchBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page := pagination.Blogs.Parse(query.Get("page"), query.Get("limit"))

		blogs, meta, err := h.blogs.Search(r.Context(), query.Get("q"), page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WritePage(w, blogs, meta, searchMeta{SearchQuery: query.Get("q")})
	}
}

func (h blogHandler) filterBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		page := pagination.Blogs.Parse(query.Get("page"), query.Get("limit"))
		tag, author := query.Get("tag"), query.Get("author")

		blogs, meta, err := h.blogs.Filter(r.Context(), tag, author, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WritePage(w, blogs, meta, filterMeta{Filters: blogFilters{Tag: optional(tag), Author: optional(author)}})
	}
}

func (h blogHandler) getUserBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page := pagination.Blogs.Parse(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

		result, meta, err := h.blogs.ListByAuthor(r.Context(), id, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WritePage(w, result, meta, nil)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
