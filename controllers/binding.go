package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/microcosm-cc/bluemonday"

	"github.com/cppla/simpleblog/utils"
)

// requiredMessages are shown when a field is missing or blank.
var requiredMessages = map[string]string{
	"title":    "please enter a title",
	"content":  "please enter content",
	"name":     "please enter a name",
	"email":    "please enter an email",
	"password": "please enter a password",
}

var ugcPolicy = bluemonday.UGCPolicy()

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// Report fields by their JSON names so validation keys match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
}

// bindJSON decodes the body into obj and turns any failure into a 400 AppError.
func bindJSON(ctx *gin.Context, obj interface{}) error {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return utils.InvalidRequest(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return utils.InvalidRequest(map[string]string{typeErr.Field: "invalid value"})
	}
	return utils.InvalidRequest(nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		if msg, ok := requiredMessages[fe.Field()]; ok {
			return msg
		}
		return "this field is required"
	case "email":
		return "please enter a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.InvalidRequest(map[string]string{name: "invalid value"})
	}
	return uint(id), nil
}

// queryInt returns the integer query parameter or 0 when absent or malformed.
func queryInt(ctx *gin.Context, key string) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return 0
	}
	return n
}
