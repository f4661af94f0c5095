package handlers

import (
	"net/http"

	"stairviz/internal/middleware"
)

type messageKey string

const (
	msgSessionExpired   messageKey = "session_expired"
	msgUnsupportedImage messageKey = "unsupported_image"
	msgNetworkFailure   messageKey = "network_failure"
	msgExportFailed     messageKey = "export_failed"
)

// messages holds the visitor-facing strings per locale. Tenant dashboards
// and logs stay English; only embed-tool copy is translated.
var messages = map[string]map[messageKey]string{
	"en": {
		msgSessionExpired:   "Your session has expired. Please start over.",
		msgUnsupportedImage: "We could not read that photo. Please upload a JPG or PNG.",
		msgNetworkFailure:   "We could not reach the render service. Please try again.",
		msgExportFailed:     "We cannot prepare the download in this browser. Please save the preview image manually.",
	},
	"es": {
		msgSessionExpired:   "Tu sesión ha expirado. Vuelve a empezar.",
		msgUnsupportedImage: "No pudimos leer esa foto. Sube un JPG o PNG.",
		msgNetworkFailure:   "No pudimos conectar con el servicio de render. Inténtalo de nuevo.",
		msgExportFailed:     "No podemos preparar la descarga en este navegador. Guarda la vista previa manualmente.",
	},
}

// localized returns the translated message for the request locale. When
// detail is non-empty and the locale is English, the detail wins because it
// carries the more specific diagnosis.
func localized(r *http.Request, detail string, key messageKey) string {
	locale := middleware.LocaleFromContext(r.Context())
	table, ok := messages[locale]
	if !ok {
		table = messages["en"]
	}
	if locale == "en" && detail != "" {
		return detail
	}
	if msg, ok := table[key]; ok {
		return msg
	}
	return messages["en"][key]
}
