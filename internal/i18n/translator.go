// Package i18n renders message keys produced by the validation and domain
// layers into localized text.
package i18n

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/ar"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// Translator owns one ut.Translator per supported locale.
type Translator struct {
	uni      *ut.UniversalTranslator
	fallback ut.Translator
	english  ut.Translator
}

// New loads the English and Arabic catalogs. defaultLocale is used when a
// request names no supported language.
func New(defaultLocale string) (*Translator, error) {
	english := en.New()
	uni := ut.New(english, english, ar.New())

	catalogs := map[string]Catalog{"en": English, "ar": Arabic}
	for loc, catalog := range catalogs {
		trans, ok := uni.GetTranslator(loc)
		if !ok {
			return nil, fmt.Errorf("translator for %s not registered", loc)
		}
		for key, text := range catalog {
			if err := trans.Add(key, text, true); err != nil {
				return nil, fmt.Errorf("failed to add %s/%s: %w", loc, key, err)
			}
		}
	}

	enTrans, _ := uni.GetTranslator("en")
	fallback, ok := uni.GetTranslator(defaultLocale)
	if !ok {
		fallback = enTrans
	}
	return &Translator{uni: uni, fallback: fallback, english: enTrans}, nil
}

// Default returns the translator used when no preference matches.
func (t *Translator) Default() ut.Translator {
	return t.fallback
}

// For returns the first supported locale among the preferences.
func (t *Translator) For(preferences ...string) ut.Translator {
	if trans, ok := t.uni.FindTranslator(preferences...); ok {
		return trans
	}
	return t.fallback
}

// Message renders key in trans, falling back to English and then to the key.
func (t *Translator) Message(trans ut.Translator, key string, params ...string) string {
	if trans == nil {
		trans = t.fallback
	}
	for _, candidate := range []ut.Translator{trans, t.english} {
		if msg, err := render(candidate, key, params); err == nil {
			return msg
		}
	}
	return key
}

// render pads params so a template never indexes past them.
func render(trans ut.Translator, key string, params []string) (string, error) {
	msg, err := trans.T(key, pad(trans, key, params)...)
	if err != nil {
		return "", err
	}
	return msg, nil
}

func pad(trans ut.Translator, key string, params []string) []string {
	need := 0
	if tmpl, ok := template(trans, key); ok {
		for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n+1 > need {
				need = n + 1
			}
		}
	}
	if len(params) >= need {
		return params
	}
	out := make([]string, need)
	copy(out, params)
	return out
}

func template(trans ut.Translator, key string) (string, bool) {
	catalog := English
	if trans.Locale() == "ar" {
		catalog = Arabic
	}
	tmpl, ok := catalog[key]
	return tmpl, ok
}

// Locale returns the locale name of trans.
func Locale(trans ut.Translator) string {
	if trans == nil {
		return ""
	}
	return trans.Locale()
}

// RegisterValidator installs English messages for struct validation errors.
func (t *Translator) RegisterValidator(v *validator.Validate) error {
	return en_translations.RegisterDefaultTranslations(v, t.english)
}

// ValidationMessages flattens validator errors into field -> message.
func (t *Translator) ValidationMessages(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[lowerFirst(fe.Field())] = fe.Translate(t.english)
	}
	return out, true
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// ParseAcceptLanguage returns the language tags of an Accept-Language header
// in preference order, reduced to their primary subtag.
func ParseAcceptLanguage(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		tag = strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		out = append(out, tag)
	}
	return out
}
