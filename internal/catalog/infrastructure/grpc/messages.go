package grpc

import (
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
)

type Empty struct{}

type IDRequest struct {
	ID int64 `json:"id"`
}

type Book struct {
	ID                   int64      `json:"id,omitempty"`
	Title                string     `json:"title"`
	Genre                string     `json:"genre,omitempty"`
	Synopsis             string     `json:"synopsis,omitempty"`
	ISBN                 string     `json:"isbn,omitempty"`
	Edition              int        `json:"edition,omitempty"`
	SuggestedRetailCents int64      `json:"suggestedRetailCents,omitempty"`
	TotalCopies          int        `json:"totalCopies"`
	Status               string     `json:"status,omitempty"`
	AuthorIDs            []int64    `json:"authorIds"`
	Flag                 string     `json:"flag,omitempty"`
	PublishedAt          *time.Time `json:"publishedAt,omitempty"`
}

type BookList struct {
	Books []*Book `json:"books"`
}

type UpdateBookRequest struct {
	ID   int64 `json:"id"`
	Book Book  `json:"book"`
}

type ListBooksRequest struct {
	AuthorIDs []int64 `json:"authorIds,omitempty"`
}

type PublishRequest struct {
	ID              int64 `json:"id"`
	PublishedCopies int   `json:"publishedCopies"`
}

type Author struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	Flag      string `json:"flag,omitempty"`
}

type AuthorList struct {
	Authors []*Author `json:"authors"`
}

type UpdateAuthorRequest struct {
	ID     int64  `json:"id"`
	Author Author `json:"author"`
}

func toBook(b domain.Book) *Book {
	return &Book{
		ID: b.ID, Title: b.Title, Genre: b.Genre, Synopsis: b.Synopsis, ISBN: b.ISBN, Edition: b.Edition,
		SuggestedRetailCents: b.SuggestedRetailCents, TotalCopies: b.TotalCopies,
		Status: string(b.Status), AuthorIDs: b.AuthorIDs, Flag: string(b.Flag), PublishedAt: b.PublishedAt,
	}
}

func (b *Book) changes() domain.BookChanges {
	return domain.BookChanges{
		Title: b.Title, Genre: b.Genre, Synopsis: b.Synopsis, ISBN: b.ISBN, Edition: b.Edition,
		SuggestedRetailCents: b.SuggestedRetailCents, TotalCopies: b.TotalCopies,
		Status: domain.Status(b.Status), AuthorIDs: b.AuthorIDs,
	}
}

func toAuthor(a domain.Author) *Author {
	return &Author{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, Email: a.Email, Bio: a.Bio, Flag: string(a.Flag)}
}

func (a *Author) toDomain() domain.Author {
	return domain.Author{FirstName: a.FirstName, LastName: a.LastName, Email: a.Email, Bio: a.Bio, Flag: domain.Flag(a.Flag)}
}
