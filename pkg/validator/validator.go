// Package validator decodes and checks request bodies with
// go-playground/validator, including the title whitelist and item type tags.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/titleguard/pkg/httpx"
	"github.com/ghuser/titleguard/services/item/domain/models"
	domainsvcs "github.com/ghuser/titleguard/services/item/domain/services"
)

const (
	// TagTitle rejects strings holding characters outside the title whitelist.
	TagTitle = "cmetitle"
	// TagItemType rejects names that are not a known models.ItemType.
	TagItemType = "itemtype"
)

// FieldErrors is the 422 body written when a request fails validation.
type FieldErrors struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
} // @name FieldErrors

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation(TagTitle, func(fl validator.FieldLevel) bool {
		return !domainsvcs.HasInvalidCharacters(fl.Field().String())
	})
	_ = v.RegisterValidation(TagItemType, func(fl validator.FieldLevel) bool {
		_, err := models.ParseItemType(fl.Field().String())
		return err == nil
	})
	return v
}

// jsonFieldName reports fields under their JSON name so clients can map
// errors back onto the body they sent.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// RegisterStructValidation adds a struct-level rule for the given types.
// Call from package init, before the first request is validated.
func RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	validate.RegisterStructValidation(fn, types...)
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	return validate.Struct(s)
}

var fixedMessages = map[string]string{
	"required":  "This field is required",
	"uuid":      "Must be a valid UUID",
	"uuid4":     "Must be a valid UUID",
	"email":     "Must be a valid email address",
	"url":       "Must be a valid URL",
	"numeric":   "Must be a numeric value",
	"alpha":     "Must contain only letters",
	"alphanum":  "Must contain only letters and numbers",
	TagItemType: "Must be a known item type",
}

var paramMessages = map[string]string{
	"min": "Minimum length is %s",
	"max": "Maximum length is %s",
	"gte": "Must be greater than or equal to %s",
	"lte": "Must be less than or equal to %s",
}

// FormatValidationErrors maps each failing field to a readable message.
// Errors that did not come from the validator yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == TagTitle {
		bad := domainsvcs.FindInvalidCharacters(fmt.Sprint(fe.Value()))
		return "Contains characters that are not allowed: " + strings.Join(bad, ",")
	}
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	if format, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return fmt.Sprintf("Validation failed on '%s'", fe.Tag())
}

// ValidateRequest decodes the JSON body into T and validates it. On failure it
// writes 413 for an oversized body, 400 for malformed JSON or 422 with
// FieldErrors, and returns false.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, FieldErrors{
			Error:  "Validation failed",
			Fields: FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
