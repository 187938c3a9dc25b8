package entities

import "time"

// Commit is a single commit as listed by the provider. No parent graph is kept.
type Commit struct {
	Hash        string    `json:"hash"`
	Message     string    `json:"message"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	Date        time.Time `json:"date"`
}

// Branch is a named head in a repository.
type Branch struct {
	Name             string `json:"name"`
	LatestCommitHash string `json:"latestCommitHash"`
	Default          bool   `json:"default"`
	Protected        bool   `json:"protected"`
	URL              string `json:"url,omitempty"`
}

// Tag is a named reference to a commit. Lightweight tags leave Message, Tagger and Date empty.
type Tag struct {
	Name       string     `json:"name"`
	CommitHash string     `json:"commitHash"`
	Message    string     `json:"message,omitempty"`
	Tagger     string     `json:"tagger,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}
