package utils

import (
	"strings"
	"unicode"
)

// CategoryLabel maps a catalog category to its display label.
// Input is normalized to lowercase before mapping.
func CategoryLabel(category string) string {
	categoryLower := strings.ToLower(strings.TrimSpace(category))

	labels := map[string]string{
		"service": "Servizi",
		"product": "Prodotti",
	}

	if label, exists := labels[categoryLower]; exists {
		return label
	}

	// If not found, return the input as given
	return strings.TrimSpace(category)
}

// LeadStatusLabel maps a lead status to its dashboard label
func LeadStatusLabel(status string) string {
	statusLower := strings.ToLower(strings.TrimSpace(status))

	labels := map[string]string{
		"new":       "Nuovo",
		"contacted": "Contattato",
		"quoted":    "Preventivo inviato",
		"won":       "Confermato",
		"lost":      "Perso",
	}

	if label, exists := labels[statusLower]; exists {
		return label
	}
	return strings.TrimSpace(status)
}

// NormalizePhone strips everything but digits from a phone number, as wa.me links expect.
// A leading "00" international prefix is dropped.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "00")
}
