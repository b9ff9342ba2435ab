package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-im-ha/turbo-blog-practice/errs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("allowed origin gets headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)
		req.Header.Set("Origin", "http://allowed.test")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://allowed.test", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin preflight is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/blogs", nil)
		req.Header.Set("Origin", "http://evil.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitOnlyThrottlesMutations(t *testing.T) {
	s := newTestServer(t, map[string]string{"RATE_LIMIT_RPS": "0.001", "RATE_LIMIT_BURST": "1"})
	body := map[string]string{"email": "nobody@example.com", "password": "whatever1"}

	rec := s.do(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	for i := 0; i < 3; i++ {
		rec = s.do(http.MethodGet, "/api/blogs", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRecoverPanics(t *testing.T) {
	handler := RecoverPanics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
}

func TestWriteError(t *testing.T) {
	responder := NewResponder(zerolog.Nop())

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails any
	}{
		{
			name:       "unexpected error hides its text",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
		{
			name:        "details string",
			err:         errs.NewInvalidIDError("id"),
			wantStatus:  http.StatusBadRequest,
			wantError:   "invalid id",
			wantDetails: "id must be a valid UUID",
		},
		{
			name:       "internal details stay in the log",
			err:        errs.NewDatabaseError("update", "comment", errors.New("timeout")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "database query failed",
		},
		{
			name:        "field errors",
			err:         errs.NewValidationError("validation failed", []errs.FieldError{{Field: "title", Message: "cannot be blank"}}),
			wantStatus:  http.StatusBadRequest,
			wantError:   "validation failed",
			wantDetails: []any{map[string]any{"field": "title", "message": "cannot be blank"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			responder.WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantDetails, body["details"])
		})
	}
}

func TestFlattenFieldErrorsOnUpdate(t *testing.T) {
	tags := []string{"ok", "x"}
	err := validate(updateBlogRequest{Tags: &tags})

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "tags.1", apiErr.Fields[0].Field)

	assert.NoError(t, validate(updateBlogRequest{}))
}

func TestNotificationIDs(t *testing.T) {
	id := "8f14e45f-ceea-4e7a-9c3b-1d2f3a4b5c6d"

	err := validate(notificationIDsRequest{NotificationIDs: []string{id, ""}})
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "notificationIds.1", apiErr.Fields[0].Field)

	_, err = notificationIDsRequest{NotificationIDs: []string{""}}.ids()
	assert.True(t, errs.IsBadRequest(err))

	ids, err := notificationIDsRequest{NotificationIDs: []string{id}}.ids()
	require.NoError(t, err)
	assert.Equal(t, id, ids[0].String())
}
