package i18n

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	en := tr.For("en")
	assert.Equal(t, "National ID must be 14 digits", tr.Message(en, "citizens.nationalId.digits", "14"))
	assert.Equal(t, "Must be at least 1", tr.Message(en, "validation.min", "1"))
	assert.Equal(t, "Required", tr.Message(nil, "validation.required"))

	t.Run("missing params render empty", func(t *testing.T) {
		assert.Equal(t, "Must be at most ", tr.Message(en, "validation.max"))
	})

	t.Run("unknown key renders the key", func(t *testing.T) {
		assert.Equal(t, "no.such.key", tr.Message(en, "no.such.key"))
	})

	t.Run("arabic falls back to english", func(t *testing.T) {
		arabic := tr.For("ar")
		assert.Equal(t, "ar", Locale(arabic))
		assert.Contains(t, tr.Message(arabic, "citizens.nationalId.digits", "14"), "14")
		assert.Equal(t, "Card issued successfully", tr.Message(arabic, "cardManagement.cardIssueSuccess"))
	})

	t.Run("unsupported locale uses the default", func(t *testing.T) {
		assert.Equal(t, "en", Locale(tr.For("fr", "de")))
	})
}

func TestParseAcceptLanguage(t *testing.T) {
	assert.Equal(t, []string{"ar", "en", "en"}, ParseAcceptLanguage("ar-EG,en-US;q=0.8, en;q=0.5"))
	assert.Empty(t, ParseAcceptLanguage(""))
	assert.Empty(t, ParseAcceptLanguage("*"))
}

func TestValidationMessages(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	v := validator.New()
	require.NoError(t, tr.RegisterValidator(v))

	type login struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required"`
	}
	msgs, ok := tr.ValidationMessages(v.Struct(login{Email: "nope"}))
	require.True(t, ok)
	assert.Contains(t, msgs["email"], "valid email")
	assert.Contains(t, msgs["password"], "required")

	_, ok = tr.ValidationMessages(assert.AnError)
	assert.False(t, ok)
}
