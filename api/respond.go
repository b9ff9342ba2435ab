package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// envelope is the body of every successful JSON response.
type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Meta       any              `json:"meta,omitempty"`
}

// errorBody is the body of every failed response. Details is either a string or a list of
// field errors.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteData answers 200 with data in the success envelope.
func (r Responder) WriteData(w http.ResponseWriter, message string, data any) {
	r.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func (r Responder) WriteCreated(w http.ResponseWriter, message string, data any) {
	r.WriteJSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func (r Responder) WritePage(w http.ResponseWriter, data any, page pagination.Meta, meta any) {
	r.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &page, Meta: meta})
}

func (r Responder) WriteMeta(w http.ResponseWriter, message string, data any, meta any) {
	r.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Meta: meta})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
	}

	body := errorBody{Error: apiErr.Error()}
	switch {
	case len(apiErr.Fields) > 0:
		body.Details = apiErr.Fields
	case apiErr.Details != "" && apiErr.StatusCode < http.StatusInternalServerError:
		body.Details = apiErr.Details
	}
	r.WriteJSON(w, apiErr.StatusCode, body)
}
