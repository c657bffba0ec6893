// Package localeutil derives language and region facts from host locales.
package localeutil

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultRegion is used when a locale carries no recoverable region.
const DefaultRegion = "US"

// CountryCode returns the region for a locale such as "en_US" or "fr-CA".
//
// Locales without an explicit region resolve through the likely-region
// tables (e.g. "ja" -> "JP"); locales that cannot be parsed at all fall
// back to DefaultRegion.
func CountryCode(locale string) string {
	normalized := strings.ReplaceAll(locale, "_", "-")

	tag, err := language.Parse(normalized)
	if err != nil {
		return DefaultRegion
	}

	region, confidence := tag.Region()
	if confidence == language.No {
		return DefaultRegion
	}

	return region.String()
}

// LanguageCode returns the language component of a locale: the segment
// before the first "_" or "-", e.g. "es" for "es_MX".
func LanguageCode(locale string) string {
	if i := strings.IndexAny(locale, "_-"); i != -1 {
		return locale[:i]
	}
	return locale
}
