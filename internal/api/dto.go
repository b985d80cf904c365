package api

import "github.com/starford/quill/internal/models"

// AddNoteRequest is the request body for appending a note.
// Keywords is the raw comma-separated string.
type AddNoteRequest struct {
	Title    string `json:"title" example:"Groceries"`
	Content  string `json:"content" example:"<b>milk</b>"`
	Keywords string `json:"keywords" example:"home, shopping"`
	Category string `json:"category" example:"todo"`
}

// Draft converts the request to the service input.
func (r AddNoteRequest) Draft() models.Draft {
	return models.Draft{
		Title:    r.Title,
		Content:  r.Content,
		Keywords: r.Keywords,
		Category: r.Category,
	}
}

// NoteListResponse wraps the full note listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total" example:"42"`
}
