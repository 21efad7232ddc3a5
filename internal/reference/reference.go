// Copyright (c) 2026 ProsePilot. All rights reserved.
// Author: engineering@prosepilot.app

/*
Package reference manages the master data of ProsePilot.

It serves the small, slowly-changing vocabularies that book metadata points
into: supported writing languages and the category taxonomy. Both are
read-only through the API; curation happens out of band.
*/
package reference

// # Language Domain

// Language is a supported writing language (ISO-639-1 coded).
type Language struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// # Category Domain

// Category is one entry of the genre/subject taxonomy books are filed under.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
