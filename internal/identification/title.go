package identification

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UntitledDocument names documents whose file name yields no words.
const UntitledDocument = "Untitled Document"

var titleCaser = cases.Title(language.Und, cases.NoLower)

// DeriveTitle turns a PDF file name into a display title. Separators become
// spaces, camelCase runs are split, and each word is capitalized while
// acronyms keep their case.
func DeriveTitle(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var words []string
	var word []rune
	flush := func() {
		if len(word) > 0 {
			words = append(words, string(word))
			word = word[:0]
		}
	}
	runes := []rune(base)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if len(word) > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
				flush()
			}
			word = append(word, r)
		default:
			flush()
		}
	}
	flush()

	if len(words) == 0 || sourcePath == "" {
		return UntitledDocument
	}
	return titleCaser.String(strings.Join(words, " "))
}
