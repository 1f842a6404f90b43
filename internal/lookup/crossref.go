package lookup

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"recognizer/internal/library"
	"recognizer/internal/services"
)

type crossrefEnvelope struct {
	Status  string       `json:"status"`
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Type           string           `json:"type"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossrefAuthor `json:"author"`
	Abstract       string           `json:"abstract"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Page           string           `json:"page"`
	ISSN           []string         `json:"ISSN"`
	Publisher      string           `json:"publisher"`
	URL            string           `json:"URL"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

var (
	doiPattern  = regexp.MustCompile(`(?i)\b10\.\d{4,9}/\S+`)
	markupStrip = regexp.MustCompile(`<[^>]+>`)
)

// NormalizeDOI extracts a bare DOI from a value that may carry a resolver
// prefix or trailing punctuation. It returns "" when no DOI is present.
func NormalizeDOI(value string) string {
	match := doiPattern.FindString(strings.TrimSpace(value))
	return strings.TrimRight(match, ".,;)")
}

// LookupDOI resolves a DOI to a journal article item.
func (c *Client) LookupDOI(ctx context.Context, doi string) (*library.Item, error) {
	normalized := NormalizeDOI(doi)
	if normalized == "" {
		return nil, services.Wrap(services.ErrValidation, "lookup", "doi", fmt.Sprintf("invalid DOI %q", doi), nil)
	}
	endpoint := c.crossrefURL + "/works/" + url.PathEscape(normalized)
	if c.mailto != "" {
		endpoint += "?mailto=" + url.QueryEscape(c.mailto)
	}

	var envelope crossrefEnvelope
	if err := c.getJSON(ctx, "doi", endpoint, &envelope); err != nil {
		return nil, err
	}
	work := envelope.Message
	if len(work.Title) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "lookup", "doi", "record has no title", nil)
	}
	return c.crossrefItem(work, normalized), nil
}

func (c *Client) crossrefItem(work crossrefWork, doi string) *library.Item {
	item := library.NewItem(library.TypeJournalArticle, c.libraryID)
	item.SetField(library.FieldTitle, first(work.Title))
	item.SetField(library.FieldDOI, firstNonEmpty(work.DOI, doi))
	item.SetField(library.FieldPublicationTitle, first(work.ContainerTitle))
	item.SetField(library.FieldVolume, work.Volume)
	item.SetField(library.FieldIssue, work.Issue)
	item.SetField(library.FieldPages, work.Page)
	item.SetField(library.FieldISSN, strings.Join(work.ISSN, ", "))
	item.SetField(library.FieldURL, work.URL)
	item.SetField(library.FieldAbstract, cleanAbstract(work.Abstract))
	if len(work.Issued.DateParts) > 0 {
		item.SetField(library.FieldDate, formatDateParts(work.Issued.DateParts[0]))
	}
	for _, author := range work.Author {
		creator := library.Creator{FirstName: author.Given, LastName: author.Family, CreatorType: library.CreatorAuthor}
		if creator.LastName == "" && author.Name != "" {
			creator.LastName = author.Name
		}
		item.Creators = append(item.Creators, creator)
	}
	return item
}

func cleanAbstract(raw string) string {
	text := markupStrip.ReplaceAllString(raw, " ")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

func formatDateParts(parts []int) string {
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if part <= 0 {
			break
		}
		if i == 0 {
			out = append(out, strconv.Itoa(part))
			continue
		}
		out = append(out, fmt.Sprintf("%02d", part))
	}
	return strings.Join(out, "-")
}

func first(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	return first(values)
}
