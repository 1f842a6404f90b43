package recognition

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TypeBookChapter is the type hint for a chapter inside an edited book.
const TypeBookChapter = "book-chapter"

// Author is a recognized creator name.
type Author struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Result is the candidate metadata returned by the recognition service. Every
// field is optional.
type Result struct {
	Type      string   `json:"type,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	ISBN      string   `json:"isbn,omitempty"`
	Title     string   `json:"title,omitempty"`
	Authors   []Author `json:"authors,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Year      string   `json:"year,omitempty"`
	Container string   `json:"container,omitempty"`
	Volume    string   `json:"volume,omitempty"`
	Issue     string   `json:"issue,omitempty"`
	Pages     string   `json:"pages,omitempty"`
	ISSN      string   `json:"issn,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// IsEmpty reports whether the result carries nothing the resolver can use.
func (r *Result) IsEmpty() bool {
	return r == nil || (r.DOI == "" && r.ISBN == "" && r.Title == "")
}

// IsBookChapter reports whether the type hint marks a book chapter.
func (r *Result) IsBookChapter() bool {
	return r != nil && strings.EqualFold(r.Type, TypeBookChapter)
}

// wireResult tolerates the year arriving as a number or a string.
type wireResult struct {
	Result
	Year json.RawMessage `json:"year,omitempty"`
}

func (w wireResult) result() *Result {
	out := w.Result
	out.Year = ""
	if len(w.Year) > 0 {
		var s string
		if err := json.Unmarshal(w.Year, &s); err == nil {
			out.Year = s
		} else {
			var n int
			if err := json.Unmarshal(w.Year, &n); err == nil && n > 0 {
				out.Year = strconv.Itoa(n)
			}
		}
	}
	out.Type = strings.TrimSpace(out.Type)
	out.DOI = strings.TrimSpace(out.DOI)
	out.ISBN = strings.TrimSpace(out.ISBN)
	out.Title = strings.TrimSpace(out.Title)
	out.Year = strings.TrimSpace(out.Year)
	return &out
}
