package catalog

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/bookinstances"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/uptrace/bun"
)

// ErrNotEmpty is returned by Seed when the catalog already holds books.
var ErrNotEmpty = errors.New("catalog already has books")

type seedAuthor struct {
	firstName, familyName string
	born, died            string
}

type seedBook struct {
	title, summary, isbn string
	author               int
	genres               []int
}

type seedCopy struct {
	book            int
	imprint, status string
	dueBack         string
}

var (
	sampleGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}

	sampleAuthors = []seedAuthor{
		{"Patrick", "Rothfuss", "1973-06-06", ""},
		{"Ben", "Bova", "1932-11-08", ""},
		{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
		{"Bob", "Billings", "", ""},
		{"Jim", "Jones", "1971-12-16", ""},
	}

	sampleBooks = []seedBook{
		{
			title:   "The Name of the Wind (The Kingkiller Chronicle, #1)",
			summary: "I have stolen princesses back from sleeping barrow kings. I burned down the town of Trebon. I have spent the night with Felurian and left with both my sanity and my life.",
			isbn:    "9781473211896",
			author:  0,
			genres:  []int{0},
		},
		{
			title:   "The Wise Man's Fear (The Kingkiller Chronicle, #2)",
			summary: "Picking up the tale of Kvothe Kingkiller once again, we follow him into exile, into political intrigue, courtship, adventure, love and magic.",
			isbn:    "9788401352836",
			author:  0,
			genres:  []int{0},
		},
		{
			title:   "The Slow Regard of Silent Things (Kingkiller Chronicle)",
			summary: "Deep below the University, there is a dark place. Few people know of it: a broken web of ancient passageways and abandoned rooms.",
			isbn:    "9780756411336",
			author:  0,
			genres:  []int{0},
		},
		{
			title:   "Apes and Angels",
			summary: "Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity. Humans went to the stars in a desperate crusade to save intelligent life wherever they found it.",
			isbn:    "9780765379528",
			author:  1,
			genres:  []int{1},
		},
		{
			title:   "Death Wave",
			summary: "In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.",
			isbn:    "9780765379504",
			author:  1,
			genres:  []int{1},
		},
		{
			title:   "Test Book 1",
			summary: "Summary of test book 1",
			isbn:    "ISBN111111",
			author:  4,
			genres:  []int{0, 1},
		},
		{
			title:   "Test Book 2",
			summary: "Summary of test book 2",
			isbn:    "ISBN222222",
			author:  4,
		},
	}

	sampleCopies = []seedCopy{
		{0, "London Gollancz, 2014.", models.BookInstanceStatusAvailable, ""},
		{1, "Gollancz, 2011.", models.BookInstanceStatusLoaned, "2026-11-01"},
		{2, "Gollancz, 2015.", "", ""},
		{3, "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable, ""},
		{3, "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable, ""},
		{3, "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable, ""},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusAvailable, ""},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusMaintenance, ""},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusLoaned, ""},
		{0, "Imprint XXX2", models.BookInstanceStatusMaintenance, ""},
		{1, "Imprint XXX3", models.BookInstanceStatusReserved, ""},
	}
)

// SeedResult is how many records Seed wrote.
type SeedResult struct {
	Genres        int
	Authors       int
	Books         int
	BookInstances int
}

// Seed fills an empty catalog with a small sample library. Text goes through
// the same escaping as submitted forms so the pages render it identically.
func Seed(ctx context.Context, db *bun.DB) (*SeedResult, error) {
	log := logger.FromContext(ctx)

	genreService := genres.NewService(db)
	authorService := authors.NewService(db)
	bookService := books.NewService(db)
	instanceService := bookinstances.NewService(db)

	count, err := bookService.CountBooks(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if count > 0 {
		return nil, ErrNotEmpty
	}

	result := &SeedResult{}

	genreIDs := make([]string, 0, len(sampleGenres))
	for _, name := range sampleGenres {
		payload := genres.GenrePayload{Name: binder.EscapeMarkup(name)}
		candidate := payload.Genre(0)
		genre, err := genreService.FindGenre(ctx, genres.RetrieveGenreOptions{Name: &candidate.Name})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if genre == nil {
			genre, err = genreService.CreateGenre(ctx, candidate)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			result.Genres++
		}
		genreIDs = append(genreIDs, strconv.Itoa(genre.ID))
	}

	authorIDs := make([]string, 0, len(sampleAuthors))
	for _, a := range sampleAuthors {
		payload := authors.AuthorPayload{
			FirstName:   binder.EscapeMarkup(a.firstName),
			FamilyName:  binder.EscapeMarkup(a.familyName),
			DateOfBirth: a.born,
			DateOfDeath: a.died,
		}
		author, err := authorService.CreateAuthor(ctx, payload.Author(0))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		authorIDs = append(authorIDs, strconv.Itoa(author.ID))
		result.Authors++
	}

	bookIDs := make([]string, 0, len(sampleBooks))
	for _, b := range sampleBooks {
		payload := books.BookPayload{
			Title:   binder.EscapeMarkup(b.title),
			Author:  authorIDs[b.author],
			Summary: binder.EscapeMarkup(b.summary),
			ISBN:    binder.EscapeMarkup(b.isbn),
		}
		for _, g := range b.genres {
			payload.Genre = append(payload.Genre, genreIDs[g])
		}
		book, err := bookService.CreateBook(ctx, payload.Book(0))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		bookIDs = append(bookIDs, strconv.Itoa(book.ID))
		result.Books++
	}

	for _, bi := range sampleCopies {
		status := bi.status
		if status == "" {
			status = models.BookInstanceStatusMaintenance
		}
		payload := bookinstances.BookInstancePayload{
			Book:    bookIDs[bi.book],
			Imprint: binder.EscapeMarkup(bi.imprint),
			Status:  status,
			DueBack: bi.dueBack,
		}
		_, err := instanceService.CreateBookInstance(ctx, payload.BookInstance(0))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		result.BookInstances++
	}

	log.Info("seeded catalog", logger.Data{
		"genres":         result.Genres,
		"authors":        result.Authors,
		"books":          result.Books,
		"book_instances": result.BookInstances,
	})

	return result, nil
}
