package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.Users
}

func newUserHandler(users *services.Users) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
	}
}

// register creates an account with a password
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} envelope "Created user"
// @Failure 400 {object} errorBody "Validation failed"
// @Failure 409 {object} errorBody "Email or username taken"
// @Router /api/auth/register [post]
func (h userHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.users.Register(r.Context(), services.RegisterInput{
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, "User created", user)
	}
}

// login exchanges email and password for a bearer token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} envelope "Token, expiry and user"
// @Failure 401 {object} errorBody "Invalid email or password"
// @Router /api/auth/login [post]
func (h userHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.users.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", result)
	}
}

func (h userHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		profile, err := h.users.Profile(r.Context(), principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", profile)
	}
}

func (h userHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		var req updateProfileRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.users.UpdateProfile(r.Context(), principal.ID, services.UpdateProfileInput{
			Username: req.Username,
			Image:    req.Image,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "Profile updated successfully", profile)
	}
}

func (h userHandler) getPublicProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.users.PublicProfile(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "", profile)
	}
}

type protectedUser struct {
	ID     uuid.UUID    `json:"id"`
	Email  string       `json:"email"`
	Name   string       `json:"name"`
	DBUser *models.User `json:"dbUser"`
}

type protectedResponse struct {
	Message   string        `json:"message"`
	User      protectedUser `json:"user"`
	Timestamp time.Time     `json:"timestamp"`
}

// protected echoes the caller as the token and the database see them
func (h userHandler) protected() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		user, err := h.users.Find(r.Context(), principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, http.StatusOK, protectedResponse{
			Message: "access granted to protected route",
			User: protectedUser{
				ID:     principal.ID,
				Email:  principal.Email,
				Name:   principal.Name,
				DBUser: user,
			},
			Timestamp: time.Now().UTC(),
		})
	}
}
