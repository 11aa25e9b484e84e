package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	githubRepoTag   = "githubrepo"
	githubRepoText  = "{0} must be a GitHub repository link (https://github.com/<owner>/<repo>)"
	githubRepoRegex = regexp.MustCompile(`^https?://(www\.)?github\.com/[\w.-]+/[\w.-]+/?$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// NewValidator returns a validator with the english translator and the custom tags registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(githubRepoTag, githubRepoValidation)
	RegisterCustomTranslation(validate, translator, githubRepoTag, githubRepoText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// IsGitHubRepoURL reports whether `link` points at a GitHub repository.
func IsGitHubRepoURL(link string) bool {
	return githubRepoRegex.MatchString(link)
}

// Custom Global Validators

// githubRepoValidation only allows links to a GitHub repository.
func githubRepoValidation(fl validator.FieldLevel) bool {
	return IsGitHubRepoURL(fl.Field().String())
}

// TranslateErrors flattens validator errors into FieldErrors keyed by JSON field name.
func TranslateErrors(errs validator.ValidationErrors, translator ut.Translator) []FieldError {
	flds := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		flds = append(flds, FieldError{Field: fe.Field(), Error: msg})
	}
	return flds
}

// CheckValidation converts validator errors into a *ValidationError; other errors are returned as is.
func CheckValidation(err error, translator ut.Translator) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return NewValidationError(nil, TranslateErrors(verrs, translator)...)
}
