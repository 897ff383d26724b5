package domain

import "time"

// CatalogKind identifies one of the three parallel catalogs. Each kind
// forms its own forest of categories; a category never references a
// parent of a different kind.
type CatalogKind string

const (
	CatalogKindGeneral  CatalogKind = "GENERAL"
	CatalogKindCreature CatalogKind = "CREATURE"
	CatalogKindRover    CatalogKind = "ROVER"
)

// ValidCatalogKind reports whether the given kind is one of the three
// supported catalogs.
func ValidCatalogKind(kind CatalogKind) bool {
	switch kind {
	case CatalogKindGeneral, CatalogKindCreature, CatalogKindRover:
		return true
	}
	return false
}

// Category is a tree node within one catalog. Root categories have a
// nil ParentID.
type Category struct {
	ID        int64
	Kind      CatalogKind
	ParentID  *int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item belongs to exactly one category and is removed when its
// category's subtree is deleted.
type Item struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
