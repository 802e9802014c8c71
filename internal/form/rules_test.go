package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRules(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		rule  Rule
		value string
		want  string
	}{
		{"required blank", Required("req"), "   ", "req"},
		{"required ok", Required("req"), "x", ""},
		{"digits short", Digits(14, "digits"), "2901234567890", "digits"},
		{"digits letters", Digits(14, "digits"), "2901234567890a", "digits"},
		{"digits ok", Digits(14, "digits"), "29012345678901", ""},
		{"digits skips empty", Digits(14, "digits"), "", ""},
		{"min length", MinLength(3, "min"), "Al", "min"},
		{"min length ok", MinLength(3, "min"), "Ali", ""},
		{"phone ok", Phone("phone"), "+20 123 456 7890", ""},
		{"phone without plus", Phone("phone"), "0123 456", ""},
		{"phone dashes", Phone("phone"), "+20-123", "phone"},
		{"phone plus in middle", Phone("phone"), "20+123", "phone"},
		{"email ok", Email("email"), "sara.ahmed@example.com", ""},
		{"email bad", Email("email"), "sara.ahmed", "email"},
		{"date bad", Date("date"), "15/05/1990", "date"},
		{"date ok", Date("date"), "1990-05-15", ""},
		{"today is allowed", NotAfterToday("future"), "2024-06-01", ""},
		{"tomorrow is not", NotAfterToday("future"), "2024-06-02", "future"},
		{"range low", IntRange(1, 10, "num", "min", "max"), "0", "min"},
		{"range high", IntRange(1, 10, "num", "min", "max"), "11", "max"},
		{"range nan", IntRange(1, 10, "num", "min", "max"), "five", "num"},
		{"range ok", IntRange(1, 10, "num", "min", "max"), "10", ""},
		{"one of", OneOf("enum", "Basic", "Premium"), "Gold", "enum"},
		{"one of ok", OneOf("enum", "Basic", "Premium"), "Premium", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.rule(tt.value, now)
			if tt.want == "" {
				assert.Nil(t, v)
				return
			}
			if assert.NotNil(t, v) {
				assert.Equal(t, tt.want, v.Key)
			}
		})
	}
}

func TestFieldCheckReturnsFirstViolation(t *testing.T) {
	f, ok := CitizenSchema().Field("nationalId")
	assert.True(t, ok)

	v := f.Check("", time.Now())
	if assert.NotNil(t, v) {
		assert.Equal(t, "citizens.nationalId.required", v.Key)
	}
	v = f.Check("123", time.Now())
	if assert.NotNil(t, v) {
		assert.Equal(t, "citizens.nationalId.digits", v.Key)
		assert.Equal(t, []string{"14"}, v.Params)
	}
}
