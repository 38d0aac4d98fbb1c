package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func abortWith(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	Abort(ctx, err)

	if !ctx.IsAborted() {
		t.Error("context not aborted")
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestAbortAppError(t *testing.T) {
	notFound := NewAppError(http.StatusNotFound, "post not found")
	w, body := abortWith(t, fmt.Errorf("lookup: %w", notFound))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if body.Code != "404" || body.Message != "post not found" {
		t.Errorf("body = %+v", body)
	}
	if body.Validation == nil {
		t.Error("validation should be an empty object, not null")
	}
}

func TestAbortInvalidRequest(t *testing.T) {
	w, body := abortWith(t, InvalidRequest(map[string]string{"title": "please enter a title"}))

	if w.Code != http.StatusBadRequest || body.Code != "400" || body.Message != "invalid request" {
		t.Errorf("status=%d body=%+v", w.Code, body)
	}
	if body.Validation["title"] != "please enter a title" {
		t.Errorf("validation = %v", body.Validation)
	}
}

func TestAbortUnknownError(t *testing.T) {
	w, body := abortWith(t, errors.New("db exploded"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body.Message != "internal server error" {
		t.Errorf("message = %q, internal details must not leak", body.Message)
	}
}
