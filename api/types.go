package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/services"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and runs its validation rules.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validation.Validatable) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return validate(dst)
}

func validate(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return errs.NewValidationError("validation failed", flattenFieldErrors("", fieldErrs))
	}
	return errs.NewValidationError("validation failed", []errs.FieldError{{Message: err.Error()}})
}

// flattenFieldErrors turns nested ozzo errors into a sorted list. Slice elements are named
// field.index.
func flattenFieldErrors(prefix string, fieldErrs validation.Errors) []errs.FieldError {
	var out []errs.FieldError
	for field, err := range fieldErrs {
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}

		var nested validation.Errors
		if errors.As(err, &nested) {
			out = append(out, flattenFieldErrors(name, nested)...)
			continue
		}
		out = append(out, errs.FieldError{Field: name, Message: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// pathUUID reads a UUID path parameter.
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, errs.NewInvalidIDError(param)
	}
	return id, nil
}

var tagRules = []validation.Rule{
	validation.Length(0, services.MaxTagsPerBlog).Error(fmt.Sprintf("at most %d tags are allowed", services.MaxTagsPerBlog)),
	validation.Each(validation.RuneLength(services.MinTagLength, services.MaxTagLength)),
}

type createBlogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Image   string   `json:"image"`
	Tags    []string `json:"tags"`
}

func (r createBlogRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(5, 100)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(services.MinContentLength, services.MaxContentLength)),
		validation.Field(&r.Image, is.URL),
		validation.Field(&r.Tags, tagRules...),
	)
}

type updateBlogRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Image   *string   `json:"image"`
	Tags    *[]string `json:"tags"`
}

func (r updateBlogRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(5, 100)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(services.MinContentLength, services.MaxContentLength)),
		validation.Field(&r.Image, is.URL),
		validation.Field(&r.Tags, validation.By(func(any) error {
			if r.Tags == nil {
				return nil
			}
			return validation.Validate(*r.Tags, tagRules...)
		})),
	)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (r commentRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required.Error("comment cannot be empty"), validation.RuneLength(1, 300)),
	)
}

type notificationIDsRequest struct {
	NotificationIDs []string `json:"notificationIds"`
}

func (r notificationIDsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NotificationIDs,
			validation.Required.Error("at least one notification ID is required"),
			validation.Length(1, services.MaxNotificationBatch).Error(fmt.Sprintf("cannot process more than %d notifications at once", services.MaxNotificationBatch)),
			validation.Each(validation.Required, is.UUID),
		),
	)
}

func (r notificationIDsRequest) ids() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.NotificationIDs))
	for i, raw := range r.NotificationIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errs.NewValidationError("validation failed", []errs.FieldError{
				{Field: fmt.Sprintf("notificationIds.%d", i), Message: "must be a valid UUID"},
			})
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Username, validation.Required, validation.RuneLength(3, 30)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Image    *string `json:"image"`
}

func (r updateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.RuneLength(3, 30)),
		validation.Field(&r.Image, is.URL),
	)
}
