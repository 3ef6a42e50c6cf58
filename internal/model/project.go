// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. Go favours composition over
// inheritance, so there are no base models here, just plain values.
package model

import "time"

// Project is one entry in the portfolio catalog.
//
// ID is assigned by the store on insert and never changes afterwards.
// Title and Description are always non-empty once stored. GitHubLink and
// ImageURL are display-only strings; an empty string means "not set".
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GitHubLink  string    `json:"githubLink"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectPatch describes a partial update.
//
// WHY POINTERS?
// A nil pointer means "leave this field alone", while a pointer to "" means
// "set this field to the empty string". A plain string could not tell those
// two cases apart.
type ProjectPatch struct {
	Title       *string
	Description *string
	GitHubLink  *string
	ImageURL    *string
}

// IsEmpty reports whether the patch would change nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.GitHubLink == nil && p.ImageURL == nil
}

// Apply overwrites the fields the patch sets and keeps the rest.
func (p *Project) Apply(patch ProjectPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.GitHubLink != nil {
		p.GitHubLink = *patch.GitHubLink
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
}
