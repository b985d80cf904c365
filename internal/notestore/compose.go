package notestore

import (
	"strings"

	"github.com/starford/quill/internal/models"
)

var contentEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeContent entity-encodes ampersands, angle brackets and both quote
// characters so content can be dropped into HTML as-is.
func EscapeContent(s string) string {
	return contentEscaper.Replace(s)
}

// SplitKeywords splits a comma-separated list and trims each piece.
// Order, duplicates and empty pieces are kept, so "" yields [""].
func SplitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Compose builds the stored form of a draft. Only the content is escaped;
// title and category are kept verbatim.
func Compose(id int, d models.Draft) models.Note {
	return models.Note{
		ID:       id,
		Title:    d.Title,
		Content:  EscapeContent(d.Content),
		Keywords: SplitKeywords(d.Keywords),
		Category: d.Category,
	}
}
