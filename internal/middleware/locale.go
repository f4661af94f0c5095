package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey keys the detected locale in the request context.
var LocaleKey = localeContextKey{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// supported lists the locales visitor-facing strings exist for.
var supported = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
})

// spanishCountries is the GeoIP fallback set when no Accept-Language header
// survives the embed.
var spanishCountries = map[string]struct{}{
	"ES": {}, "MX": {}, "AR": {}, "CO": {}, "CL": {}, "PE": {},
}

// Locale detects the visitor locale from Accept-Language, falling back to a
// GeoIP country lookup, and stores it in the request context.
func Locale(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, lookup)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the detected locale, or "en".
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "en"
}

func detectLocale(r *http.Request, fallback string, lookup CountryLookup) string {
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			tag, _, conf := supported.Match(tags...)
			if conf >= language.High {
				base, _ := tag.Base()
				return base.String()
			}
		}
	}
	if lookup != nil {
		if country, err := lookup(ClientIP(r)); err == nil {
			if _, ok := spanishCountries[strings.ToUpper(country)]; ok {
				return "es"
			}
		}
	}
	return fallback
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
