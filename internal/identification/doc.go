// Package identification turns a recognition candidate into an unsaved
// library item.
//
// The Resolver tries the strongest evidence first: a DOI is looked up through
// Crossref, otherwise an ISBN through Open Library, and when neither resolves
// the item is assembled from the candidate's own title, authors, and container
// data. Lookup failures are logged and absorbed here so the pipeline only sees
// "item" or "no match".
package identification
