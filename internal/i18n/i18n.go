// Package i18n provides internationalization support for the HR portal edge.
// It handles translation of user-facing messages and error messages.
package i18n

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	// defaultTranslator is the singleton translator instance.
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a new translator with the default messages.
func NewTranslator() *Translator {
	return &Translator{
		messages: getDefaultMessages(),
	}
}

// GetTranslator returns the default singleton translator instance.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the translated message for the given key and locale.
// Falls back to DefaultLocale if the locale is not found.
func (t *Translator) Translate(key, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}

	localeMessages, ok := t.messages[locale]
	if !ok {
		localeMessages = t.messages[DefaultLocale]
	}

	msg, ok := localeMessages[key]
	if !ok {
		// Fallback to default locale
		if defaultMessages := t.messages[DefaultLocale]; defaultMessages != nil {
			if fallbackMsg, exists := defaultMessages[key]; exists {
				return fallbackMsg
			}
		}
		return key
	}

	return msg
}

// GetLocale returns the first supported language in Accept-Language, in the
// order the browser listed them, or DefaultLocale. Region subtags are ignored,
// so "pt-BR" selects "pt".
func GetLocale(c *gin.Context) string {
	acceptLang := c.GetHeader(AcceptLanguageHeader)
	if acceptLang == "" {
		return DefaultLocale
	}

	supported := GetTranslator().messages
	for _, part := range strings.Split(acceptLang, ",") {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		if idx := strings.Index(lang, "-"); idx > 0 {
			lang = lang[:idx]
		}
		lang = strings.ToLower(lang)
		if _, ok := supported[lang]; ok {
			return lang
		}
	}

	return DefaultLocale
}

// getDefaultMessages returns the default message translations.
func getDefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			// Error messages
			"error.invalid_request":          "Invalid request",
			"error.invalid_request_body":     "Invalid request body",
			"error.internal_error":           "An unexpected error occurred",
			"error.unauthorized":             "Unauthorized",
			"error.api_key_required":         "API key is required",
			"error.invalid_api_key":          "Invalid API key",
			"error.forbidden":                "Forbidden",
			"error.not_found":                "Not found",
			"error.rate_limit_exceeded":      "Too many requests, please try again later",
			"error.conflict":                 "Conflict",
			"error.invalid_token":            "Invalid or expired token",
			"error.token_required":           "Authentication token is required",
			"error.timeout":                  "The request timed out",
			"error.upstream_unavailable":     "The portal is unreachable and no cached copy is available",
			"error.notification_not_found":   "Notification not found",
			"error.client_not_found":         "Client not found",
			"error.invalid_transition":       "Lifecycle step is not allowed in the current state",
			"error.journal_disabled":         "The journal is not enabled",

			// Success messages
			"success.message_handled": "Message handled",
			"success.installed":       "App shell cached",
			"success.activated":       "Cache controller activated",
		},
		"pt": {
			// Error messages
			"error.invalid_request":          "Requisição inválida",
			"error.invalid_request_body":     "Corpo da requisição inválido",
			"error.internal_error":           "Ocorreu um erro inesperado",
			"error.unauthorized":             "Não autorizado",
			"error.api_key_required":         "Chave de API é obrigatória",
			"error.invalid_api_key":          "Chave de API inválida",
			"error.forbidden":                "Proibido",
			"error.not_found":                "Não encontrado",
			"error.rate_limit_exceeded":      "Muitas requisições, tente novamente mais tarde",
			"error.conflict":                 "Conflito",
			"error.invalid_token":            "Token inválido ou expirado",
			"error.token_required":           "Token de autenticação é obrigatório",
			"error.timeout":                  "A requisição expirou",
			"error.upstream_unavailable":     "O portal está inacessível e não há cópia em cache",
			"error.notification_not_found":   "Notificação não encontrada",
			"error.client_not_found":         "Cliente não encontrado",
			"error.invalid_transition":       "Etapa do ciclo de vida não permitida no estado atual",
			"error.journal_disabled":         "O diário não está habilitado",

			// Success messages
			"success.message_handled": "Mensagem processada",
			"success.installed":       "Aplicação armazenada em cache",
			"success.activated":       "Controlador de cache ativado",
		},
		"nl": {
			// Error messages
			"error.invalid_request":          "Ongeldig verzoek",
			"error.invalid_request_body":     "Ongeldige aanvraag body",
			"error.internal_error":           "Er is een onverwachte fout opgetreden",
			"error.unauthorized":             "Niet geautoriseerd",
			"error.api_key_required":         "API-sleutel is vereist",
			"error.invalid_api_key":          "Ongeldige API-sleutel",
			"error.forbidden":                "Verboden",
			"error.not_found":                "Niet gevonden",
			"error.rate_limit_exceeded":      "Te veel verzoeken, probeer het later opnieuw",
			"error.conflict":                 "Conflict",
			"error.invalid_token":            "Ongeldig of verlopen token",
			"error.token_required":           "Authenticatietoken is vereist",
			"error.timeout":                  "Het verzoek is verlopen",
			"error.upstream_unavailable":     "Het portaal is onbereikbaar en er is geen kopie in de cache",
			"error.notification_not_found":   "Melding niet gevonden",
			"error.client_not_found":         "Client niet gevonden",
			"error.invalid_transition":       "Levenscyclusstap is niet toegestaan in de huidige status",
			"error.journal_disabled":         "Het journaal is niet ingeschakeld",

			// Success messages
			"success.message_handled": "Bericht verwerkt",
			"success.installed":       "App-shell in cache opgeslagen",
			"success.activated":       "Cachecontroller geactiveerd",
		},
	}
}
