package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGitHubRepoURL(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{link: "https://github.com/user/repo", want: true},
		{link: "https://github.com/user/repo/", want: true},
		{link: "http://www.github.com/some-org/repo.go", want: true},
		{link: "https://github.com/user", want: false},
		{link: "https://gitlab.com/user/repo", want: false},
		{link: "github.com/user/repo", want: false},
		{link: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGitHubRepoURL(tt.link))
		})
	}
}

func TestNewValidator(t *testing.T) {
	validate, translator := NewValidator()

	type form struct {
		Name string `json:"name" validate:"required"`
		Link string `json:"githubLink" validate:"required,githubrepo"`
	}

	err := validate.Struct(form{Link: "https://example.com"})
	require.Error(t, err)

	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	flds := TranslateErrors(vErrs, translator)
	assert.ElementsMatch(t, []FieldError{
		{Field: "name", Error: "this field is required"},
		{Field: "githubLink", Error: "githubLink must be a GitHub repository link (https://github.com/<owner>/<repo>)"},
	}, flds)

	assert.NoError(t, validate.Struct(form{Name: "x", Link: "https://github.com/a/b"}))
}
