package models

import "strconv"

// CatalogPath is the prefix every catalog page lives under.
const CatalogPath = "/catalog"

// List paths for each entity kind.
const (
	AuthorListPath       = CatalogPath + "/authors"
	BookListPath         = CatalogPath + "/books"
	BookInstanceListPath = CatalogPath + "/bookinstances"
	GenreListPath        = CatalogPath + "/genres"
)

func AuthorURL(id int) string {
	return detailURL("author", id)
}

func BookURL(id int) string {
	return detailURL("book", id)
}

func BookInstanceURL(id int) string {
	return detailURL("bookinstance", id)
}

func GenreURL(id int) string {
	return detailURL("genre", id)
}

func detailURL(kind string, id int) string {
	return CatalogPath + "/" + kind + "/" + strconv.Itoa(id)
}
