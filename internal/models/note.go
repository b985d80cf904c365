// Package models defines the domain types for quill.
package models

// Note is one persisted record in the store.
type Note struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

// Draft holds the raw form input before it is composed into a Note.
// Keywords is the comma-separated string as typed by the user.
type Draft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Keywords string `json:"keywords"`
	Category string `json:"category"`
}
