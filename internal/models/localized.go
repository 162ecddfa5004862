package models

// Localized is a configurable string with a Swahili variant
type Localized struct {
	EN string `json:"en" toml:"en"`
	SW string `json:"sw" toml:"sw"`
}

// For picks the variant for lang, falling back to English
func (l Localized) For(lang Language) string {
	if lang == LanguageSwahili && l.SW != "" {
		return l.SW
	}
	return l.EN
}
