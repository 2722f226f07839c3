// Package i18n provides the Arabic and English messages the owner console emits itself:
// notices, validation messages and the fallback texts for failed requests.
package i18n

import (
	"context"
	"fmt"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/relabs-tech/aqaar/core/kss"
)

// Supported languages
const (
	Arabic  = "ar"
	English = "en"
)

// Default is the language used when nothing else was selected
const Default = Arabic

// Normalize maps a language code like "en-US" to a supported language. Unknown
// languages map to the default.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if base, _, found := strings.Cut(code, "-"); found {
		code = base
	}
	switch code {
	case Arabic, English:
		return code
	}
	return Default
}

// IsRTL returns true for right-to-left languages
func IsRTL(lang string) bool {
	return Normalize(lang) == Arabic
}

// Direction returns "rtl" or "ltr"
func Direction(lang string) string {
	if IsRTL(lang) {
		return "rtl"
	}
	return "ltr"
}

// T returns the message for key in the requested language. An optional data map fills
// the template of the message. Unknown keys are returned as they are, so a missing
// translation is visible but never fatal.
func T(lang, key string, data ...Data) string {
	config := &goi18n.LocalizeConfig{MessageID: key}
	if len(data) > 0 {
		config.TemplateData = map[string]interface{}(data[0])
	}
	msg, err := localizers[Normalize(lang)].Localize(config)
	if err != nil && msg == "" {
		return key
	}
	return msg
}

// Preference persists the selected language in the key storage
type Preference struct {
	Store kss.Driver
}

// Language returns the persisted language, or the default if nothing was persisted
// or the storage cannot be read
func (p Preference) Language(ctx context.Context) string {
	if p.Store == nil {
		return Default
	}
	lang, err := kss.GetString(ctx, p.Store, kss.KeyLanguage)
	if err != nil || lang == "" {
		return Default
	}
	return Normalize(lang)
}

// Set persists the language. Unsupported languages are rejected.
func (p Preference) Set(ctx context.Context, lang string) error {
	code := strings.ToLower(strings.TrimSpace(lang))
	if code != Arabic && code != English {
		return fmt.Errorf("unsupported language '%s'", lang)
	}
	return p.Store.Put(ctx, kss.KeyLanguage, []byte(code))
}
