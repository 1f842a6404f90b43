// Package messages holds the localized strings shown on recognition rows.
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"recognizer/internal/services"
)

// Row message keys not covered by services alert keys.
const (
	KeyProcessing = "recognizePDF.processing"
	KeyNoMatches  = "recognizePDF.noMatches"
	KeyError      = "recognizePDF.error"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyProcessing:              "Processing…",
		KeyNoMatches:               "No matching references found",
		KeyError:                   "An unexpected error occurred.",
		services.AlertFileNotFound: "The target file could not be found.",
		services.AlertCouldNotRead: "Could not read text from PDF.",
		services.AlertNoOCR:        "The PDF does not contain OCRed text.",
	},
	language.German: {
		KeyProcessing:              "Wird verarbeitet…",
		KeyNoMatches:               "Keine passenden Einträge gefunden",
		KeyError:                   "Ein unerwarteter Fehler ist aufgetreten.",
		services.AlertFileNotFound: "Die Zieldatei konnte nicht gefunden werden.",
		services.AlertCouldNotRead: "Text konnte nicht aus der PDF gelesen werden.",
		services.AlertNoOCR:        "Die PDF enthält keinen erkannten Text.",
	},
	language.French: {
		KeyProcessing:              "Traitement en cours…",
		KeyNoMatches:               "Aucune référence correspondante trouvée",
		KeyError:                   "Une erreur inattendue s'est produite.",
		services.AlertFileNotFound: "Le fichier cible est introuvable.",
		services.AlertCouldNotRead: "Impossible de lire le texte du PDF.",
		services.AlertNoOCR:        "Le PDF ne contient pas de texte reconnu.",
	},
}

var defaultCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, text := range entries {
			// Only fails for malformed message templates; the table above is static.
			_ = builder.SetString(tag, key, text)
		}
	}
	return builder
}

// Localizer resolves message keys for one display language.
type Localizer struct {
	printer *message.Printer
}

// New returns a Localizer for a BCP 47 language tag. Unknown or unsupported
// tags fall back to English.
func New(lang string) *Localizer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	supported := defaultCatalog.Languages()
	_, index, confidence := defaultCatalog.Matcher().Match(tag)
	if confidence == language.No || index < 0 || index >= len(supported) {
		tag = language.English
	} else {
		tag = supported[index]
	}
	return &Localizer{printer: message.NewPrinter(tag, message.Catalog(defaultCatalog))}
}

// Text returns the localized string for key, or key itself when unknown.
func (l *Localizer) Text(key string) string {
	if l == nil {
		return New("en").Text(key)
	}
	return l.printer.Sprintf(key)
}

// Processing is the row message while a document is being recognized.
func (l *Localizer) Processing() string { return l.Text(KeyProcessing) }

// NoMatches is the row message for a soft miss.
func (l *Localizer) NoMatches() string { return l.Text(KeyNoMatches) }

// GenericError is shown for failures that carry no alert key.
func (l *Localizer) GenericError() string { return l.Text(KeyError) }

// ForError maps a pipeline failure to its row message.
func (l *Localizer) ForError(err error) string {
	if key, ok := services.AlertKey(err); ok {
		return l.Text(key)
	}
	return l.GenericError()
}
