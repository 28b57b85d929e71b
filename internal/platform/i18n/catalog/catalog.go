// Package catalog loads the translated message catalogs and registers them
// with golang.org/x/text/message. Importing the package registers the
// embedded catalogs.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other catalog must mirror.
const BaseLocale = "en-US"

const commonNamespace = "common"

// file is one locales/<locale>/<namespace>.yaml document.
type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the flattened messages of every loaded locale.
type Bundle struct {
	messages   map[string]map[string]string
	namespaces map[string]map[string]bool
}

//go:embed locales/*/*.yaml
var embedded embed.FS

func init() {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads catalogs laid out as locales/<locale>/<namespace>.yaml.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{
		messages:   map[string]map[string]string{},
		namespaces: map[string]map[string]bool{},
	}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var parsed file
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := bundle.add(p, parsed); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

// add merges one file. Locale and namespace must agree with the path, keys
// are unique per locale, and common.* keys live only in the common namespace.
func (b *Bundle) add(p string, f file) error {
	locale := strings.TrimSpace(f.Locale)
	namespace := strings.TrimSpace(f.Namespace)
	if want := path.Base(path.Dir(p)); locale != want {
		return fmt.Errorf("locale %q must match path locale %q", locale, want)
	}
	if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); namespace != want {
		return fmt.Errorf("namespace %q must match filename %q", namespace, want)
	}
	if len(f.Messages) == 0 {
		return fmt.Errorf("messages are required")
	}

	if b.namespaces[locale] == nil {
		b.namespaces[locale] = map[string]bool{}
		b.messages[locale] = map[string]string{}
	}
	if b.namespaces[locale][namespace] {
		return fmt.Errorf("namespace %q already defined for %s", namespace, locale)
	}
	b.namespaces[locale][namespace] = true

	messages := b.messages[locale]
	for key, value := range f.Messages {
		key = strings.TrimSpace(key)
		switch {
		case key == "":
			return fmt.Errorf("message key cannot be blank")
		case strings.HasPrefix(key, commonNamespace+".") && namespace != commonNamespace:
			return fmt.Errorf("key %q belongs in the %s namespace", key, commonNamespace)
		}
		if _, exists := messages[key]; exists {
			return fmt.Errorf("duplicate key %q in %s", key, locale)
		}
		messages[key] = value
	}
	return nil
}

// Register sets every message on x/text/message under the full locale tag
// and its base language.
func (b *Bundle) Register() error {
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range b.messages[locale] {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s/%s: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether the locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.messages[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales in order.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// LocaleMessages returns a copy of every message for locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	out := map[string]string{}
	for key, value := range b.messages[strings.TrimSpace(locale)] {
		out[key] = value
	}
	return out
}
