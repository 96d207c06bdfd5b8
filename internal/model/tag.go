package model

// Tag is the read-only projection of a catalog tag offered to the model.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
