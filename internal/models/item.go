package models

import (
	"fmt"
	"time"
)

// Item categories
const (
	CategoryTools = "tools"
	CategoryBooks = "books"
)

// Book branches
const (
	BranchKindergarten = "kindergarten"
	BranchPreparatory  = "preparatory"
	BranchMiddle       = "middle"
	BranchSecondary    = "secondary"
)

// branchLevels maps each book branch to its valid levels.
var branchLevels = map[string][]string{
	BranchKindergarten: {"KG1", "KG2"},
	BranchPreparatory:  {"Prep1", "Prep2", "Prep3"},
	BranchMiddle:       {"Middle1", "Middle2", "Middle3"},
	BranchSecondary:    {"Secondary1", "Secondary2", "Secondary3"},
}

type Item struct {
	ID            string
	Name          string
	Price         float64
	Category      string // "tools" or "books"
	Branch        string // books only
	Level         string // books only, constrained by branch
	Quantity      int
	InStock       bool // derived from Quantity, recomputed before every persist
	Image         string
	Description   string
	CreatedBy     string
	LastUpdatedBy string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidLevels returns the valid levels for a branch, or nil for an unknown branch.
func ValidLevels(branch string) []string {
	return branchLevels[branch]
}

// RecomputeStock derives the in-stock flag from quantity. Repositories call
// this before every write so the flag is never set independently.
func (i *Item) RecomputeStock() {
	i.InStock = i.Quantity > 0
}

// ValidateCategory enforces the discriminated category rules: tools carry no
// branch or level, books require a known branch and a level valid for it.
func (i *Item) ValidateCategory() error {
	switch i.Category {
	case CategoryTools:
		if i.Branch != "" || i.Level != "" {
			return &ValidationError{Field: "branch", Message: "branch and level apply to books only"}
		}
		return nil
	case CategoryBooks:
		levels, ok := branchLevels[i.Branch]
		if !ok {
			if i.Branch == "" {
				return &ValidationError{Field: "branch", Message: "branch is required for books"}
			}
			return &ValidationError{Field: "branch", Message: fmt.Sprintf("unknown branch %q", i.Branch)}
		}
		if i.Level == "" {
			return &ValidationError{Field: "level", Message: "level is required for books"}
		}
		for _, l := range levels {
			if l == i.Level {
				return nil
			}
		}
		return &ValidationError{Field: "level", Message: fmt.Sprintf("level %q is not valid for branch %q", i.Level, i.Branch)}
	default:
		return &ValidationError{Field: "category", Message: "category must be either 'tools' or 'books'"}
	}
}

// LevelDescription returns a human-readable branch/level label for books,
// "N/A" for tools.
func (i *Item) LevelDescription() string {
	if i.Category != CategoryBooks {
		return "N/A"
	}
	return fmt.Sprintf("%s - %s", i.Branch, i.Level)
}
