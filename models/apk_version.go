package models

import "gorm.io/gorm"

// APKVersion is a distributed release; the binary itself lives on GitHub.
type APKVersion struct {
	gorm.Model
	Version      string `gorm:"not null" json:"version"`
	GithubURL    string `gorm:"not null" json:"github_url"`
	FileSize     *int64 `json:"file_size"`
	ReleaseNotes string `json:"release_notes"`
	Downloads    int64  `json:"downloads"`
}

func (APKVersion) TableName() string { return "apk_versions" }
