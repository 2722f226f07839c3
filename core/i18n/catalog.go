package i18n

import (
	"embed"
	"fmt"
	"path"

	"github.com/goccy/go-json"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// Data is the template data of a message, for example {"Status": 418}
type Data map[string]interface{}

var (
	bundle     = newBundle()
	localizers = map[string]*goi18n.Localizer{
		Arabic:  goi18n.NewLocalizer(bundle, Arabic),
		English: goi18n.NewLocalizer(bundle, English),
	}
)

// newBundle loads the message files of all supported languages. The default language
// of the bundle serves keys a language lacks.
func newBundle() *goi18n.Bundle {
	b := goi18n.NewBundle(language.MustParse(Default))
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, lang := range []string{Arabic, English} {
		if _, err := b.LoadMessageFileFS(locales, messageFile(lang)); err != nil {
			panic(fmt.Sprintf("cannot load messages for '%s': %v", lang, err))
		}
	}
	return b
}

func messageFile(lang string) string {
	return path.Join("locales", "active."+lang+".json")
}
