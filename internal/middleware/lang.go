package middleware

import (
	"context"
	"net/http"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

// Lang extracts the language preference (cookie > query > Accept-Language)
// and stores it in the request context. Query-provided values are persisted
// in a cookie for ~30 days.
func Lang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if lang != "fr" && lang != "en" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxLang, lang)))
	})
}

// LangFrom returns the language preference from context, defaulting to fr.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return "fr"
}
