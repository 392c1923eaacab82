// Package language maps ISO 639-1 language codes to ISO 15924 script codes
// for pipeline task configs. The mapping starts from static defaults and can
// be refreshed from the ULCA models-pipeline endpoint.
package language

import (
	"sync"
)

// DefaultScript is used for any language without a known script.
const DefaultScript = "Latn"

// defaultScripts covers the languages served by the public pipeline.
var defaultScripts = map[string]string{
	"as": "Beng",
	"bn": "Beng",
	"en": "Latn",
	"gu": "Gujr",
	"hi": "Deva",
	"kn": "Knda",
	"ml": "Mlym",
	"mr": "Deva",
	"ne": "Deva",
	"or": "Orya",
	"pa": "Guru",
	"sa": "Deva",
	"ta": "Taml",
	"te": "Telu",
	"ur": "Arab",
}

// Registry is a concurrency-safe language-to-script mapping.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]string
}

// NewRegistry creates a registry seeded with the static defaults.
func NewRegistry() *Registry {
	scripts := make(map[string]string, len(defaultScripts))
	for lang, script := range defaultScripts {
		scripts[lang] = script
	}
	return &Registry{scripts: scripts}
}

// Script returns the script code for a language, falling back to Latn.
func (r *Registry) Script(lang string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if script, ok := r.scripts[lang]; ok {
		return script
	}
	return DefaultScript
}

// Update merges fetched mappings over the current ones. Empty codes are
// ignored.
func (r *Registry) Update(scripts map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for lang, script := range scripts {
		if lang == "" || script == "" {
			continue
		}
		r.scripts[lang] = script
	}
}

// Languages returns the known language codes.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.scripts))
	for lang := range r.scripts {
		langs = append(langs, lang)
	}
	return langs
}

// Len returns the number of known languages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scripts)
}
