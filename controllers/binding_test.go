package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cppla/simpleblog/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bindBody(t *testing.T, body string, obj interface{}) error {
	t.Helper()

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return bindJSON(ctx, obj)
}

func asAppError(t *testing.T, err error) *utils.AppError {
	t.Helper()

	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an *utils.AppError", err)
	}
	if appErr.Status != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400", appErr.Status)
	}
	return appErr
}

func TestBindJSONValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		want  string
	}{
		{"missing title", `{"content":"bar"}`, "title", "please enter a title"},
		{"blank title", `{"title":"   ","content":"bar"}`, "title", "please enter a title"},
		{"wrong type", `{"title":1,"content":"bar"}`, "title", "invalid value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req postCreateRequest
			appErr := asAppError(t, bindBody(t, tt.body, &req))
			if got := appErr.Validation[tt.field]; got != tt.want {
				t.Errorf("Validation[%q] = %q, want %q (all: %v)", tt.field, got, tt.want, appErr.Validation)
			}
		})
	}
}

func TestBindJSONCreateContentOptional(t *testing.T) {
	for _, body := range []string{`{"title":"foo"}`, `{"title":"foo","content":""}`} {
		var req postCreateRequest
		if err := bindBody(t, body, &req); err != nil {
			t.Errorf("bindJSON(%s) error = %v, want nil", body, err)
			continue
		}
		if req.Title != "foo" || req.Content != "" {
			t.Errorf("bindJSON(%s) = %+v", body, req)
		}
	}
}

func TestBindJSONMalformed(t *testing.T) {
	var req postCreateRequest
	appErr := asAppError(t, bindBody(t, `{"title":`, &req))
	if appErr.Message != "invalid request" || len(appErr.Validation) != 0 {
		t.Errorf("AppError = %+v, want invalid request with empty validation", appErr)
	}
}

func TestBindJSONEditRequiresBothFields(t *testing.T) {
	var req postEditRequest
	appErr := asAppError(t, bindBody(t, `{}`, &req))
	if appErr.Validation["title"] == "" || appErr.Validation["content"] == "" {
		t.Errorf("Validation = %v, want title and content", appErr.Validation)
	}

	req = postEditRequest{}
	if err := bindBody(t, `{"title":"new","content":""}`, &req); err != nil {
		t.Fatalf("empty content rejected: %v", err)
	}
	if *req.Title != "new" || *req.Content != "" {
		t.Errorf("bound = %q/%q", *req.Title, *req.Content)
	}
}

func TestBindJSONSignup(t *testing.T) {
	var req signupRequest
	appErr := asAppError(t, bindBody(t, `{"name":"neo","email":"not-an-email","password":"12"}`, &req))
	if appErr.Validation["email"] != "please enter a valid email" {
		t.Errorf("email message = %q", appErr.Validation["email"])
	}
	if appErr.Validation["password"] != "must be at least 4 characters" {
		t.Errorf("password message = %q", appErr.Validation["password"])
	}
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1", ""} {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Params = gin.Params{{Key: "id", Value: raw}}
		if _, err := parseID(ctx, "id"); err == nil {
			t.Errorf("parseID(%q) succeeded, want error", raw)
		}
	}

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := parseID(ctx, "id")
	if err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
}

func TestCleanSanitizesWhenEnabled(t *testing.T) {
	plain := &PostController{}
	if got := plain.clean("<script>x</script>hi"); got != "<script>x</script>hi" {
		t.Errorf("clean() without sanitize = %q, want input unchanged", got)
	}

	strict := &PostController{sanitize: true}
	if got := strict.clean(`<b onclick="x()">hi</b><script>alert(1)</script>`); got != "<b>hi</b>" {
		t.Errorf("clean() with sanitize = %q, want <b>hi</b>", got)
	}
}
