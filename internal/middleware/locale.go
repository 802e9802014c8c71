package middleware

import (
	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"

	"nfc-card-admin/internal/i18n"
)

const translatorKey = "translator"

// Locale picks the request translator from ?lang or Accept-Language.
func Locale(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs := i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
		if lang := c.Query("lang"); lang != "" {
			prefs = append(i18n.ParseAcceptLanguage(lang), prefs...)
		}
		trans := tr.For(prefs...)
		c.Set(translatorKey, trans)
		c.Header("Content-Language", i18n.Locale(trans))
		c.Next()
	}
}

// Translator returns the translator chosen by Locale, or nil when the
// middleware did not run.
func Translator(c *gin.Context) ut.Translator {
	if v, ok := c.Get(translatorKey); ok {
		if trans, ok := v.(ut.Translator); ok {
			return trans
		}
	}
	return nil
}
