package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/auth"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for logged in users.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

type Users struct {
	store      models.Store
	issuer     TokenIssuer
	bcryptCost int
	logger     zerolog.Logger
}

func NewUsers(store models.Store, issuer TokenIssuer) *Users {
	return &Users{
		store:      store,
		issuer:     issuer,
		bcryptCost: bcrypt.DefaultCost,
		logger:     log.With().Str("component", "users").Logger(),
	}
}

// WithBcryptCost overrides the hashing cost.
func (u *Users) WithBcryptCost(cost int) *Users {
	u.bcryptCost = cost
	return u
}

// Profile is a user with what they have produced.
type Profile struct {
	*models.User
	Counts models.UserStats `json:"_count"`
}

// PublicProfile is the profile anyone can see.
type PublicProfile struct {
	ID        uuid.UUID        `json:"id"`
	Username  string           `json:"username"`
	Image     *string          `json:"image"`
	CreatedAt time.Time        `json:"createdAt"`
	Counts    models.UserStats `json:"_count"`
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

func (u *Users) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	emailTaken, err := u.store.Users().EmailTaken(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if emailTaken {
		return nil, errs.NewConflictError("Email is already registered")
	}
	usernameTaken, err := u.store.Users().UsernameTaken(ctx, username, uuid.Nil)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if usernameTaken {
		return nil, errs.NewConflictError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to hash password", err)
	}
	password := string(hash)

	user := &models.User{Email: email, Username: username, Password: &password}
	if err := u.store.Users().Create(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("create", "user", err)
	}

	u.logger.Info().Str("userId", user.ID.String()).Msg("User registered")
	return user, nil
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login checks the password and issues a token. Accounts without a password cannot log in here.
func (u *Users) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := u.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil || user.Password == nil {
		return nil, errs.NewInvalidCredentialsError()
	}

	err = bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, errs.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to check password", err)
	}

	token, expiresAt, err := u.issuer.Issue(auth.Principal{ID: user.ID, Email: user.Email, Name: user.Username})
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to issue token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Find returns the stored user for id.
func (u *Users) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := u.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFoundError("User not found")
	}
	return user, nil
}

func (u *Users) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	user, err := u.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.withStats(ctx, user)
}

type UpdateProfileInput struct {
	Username *string
	// Image clears the picture when it points to an empty string.
	Image *string
}

func (u *Users) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*Profile, error) {
	user, err := u.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{Image: in.Image}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username != user.Username {
			taken, err := u.store.Users().UsernameTaken(ctx, username, id)
			if err != nil {
				return nil, errs.NewDatabaseError("find", "user", err)
			}
			if taken {
				return nil, errs.NewConflictError("Username is already taken")
			}
		}
		update.Username = &username
	}

	updated, err := u.store.Users().UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	if updated == nil {
		return nil, errs.NewNotFoundError("User not found")
	}
	return u.withStats(ctx, updated)
}

func (u *Users) PublicProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	profile, err := u.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:        profile.ID,
		Username:  profile.Username,
		Image:     profile.Image,
		CreatedAt: profile.CreatedAt,
		Counts:    profile.Counts,
	}, nil
}

func (u *Users) withStats(ctx context.Context, user *models.User) (*Profile, error) {
	stats, err := u.store.Users().Stats(ctx, user.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "user activity", err)
	}
	return &Profile{User: user, Counts: stats}, nil
}
