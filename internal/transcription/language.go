package transcription

import "strings"

// ModelCatalog maps language codes to speech-model directories.
type ModelCatalog struct {
	models          map[string]string
	defaultLanguage string
}

// NewModelCatalog builds a catalog. defaultLanguage must be a key of
// models; unrecognized lookups resolve to it.
func NewModelCatalog(models map[string]string, defaultLanguage string) *ModelCatalog {
	normalized := make(map[string]string, len(models))
	for code, dir := range models {
		normalized[strings.ToLower(strings.TrimSpace(code))] = dir
	}
	return &ModelCatalog{models: normalized, defaultLanguage: strings.ToLower(strings.TrimSpace(defaultLanguage))}
}

// Resolve returns the model directory for a language code, falling
// back to the default language for unknown or empty codes.
func (c *ModelCatalog) Resolve(language string) string {
	code := strings.ToLower(strings.TrimSpace(language))
	if dir, ok := c.models[code]; ok {
		return dir
	}
	return c.models[c.defaultLanguage]
}

// Supported reports whether a language code has its own model.
func (c *ModelCatalog) Supported(language string) bool {
	_, ok := c.models[strings.ToLower(strings.TrimSpace(language))]
	return ok
}
