package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
	"github.com/mrlokans/bookreviews/internal/entities"
	"github.com/mrlokans/bookreviews/internal/reviews"
)

const defaultBooksPageSize = 50

// AddBookRequest is the body of POST /add-book.
type AddBookRequest struct {
	Title           string `json:"title" form:"title"`
	Author          string `json:"author" form:"author"`
	ISBN            string `json:"isbn" form:"isbn"`
	Publisher       string `json:"publisher" form:"publisher"`
	PublicationYear int    `json:"publication_year" form:"publication_year"`
}

// BooksController serves the book catalog.
type BooksController struct {
	books BookStore
	audit *audit.Service
}

func NewBooksController(books BookStore, auditService *audit.Service) *BooksController {
	return &BooksController{books: books, audit: auditService}
}

// AddBook handles POST /add-book
func (bc *BooksController) AddBook(c *gin.Context) {
	var req AddBookRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	userID := auth.GetUserID(c)
	book, err := bc.books.AddBook(c.Request.Context(), userID, req.Title, entities.BookMetadata{
		Author:          req.Author,
		ISBN:            req.ISBN,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		respondAppError(c, err, "add book")
		return
	}
	bc.audit.LogBookAdded(userID, book.ID, book.Title, origin(c))

	c.JSON(http.StatusCreated, book)
}

// ListBooks handles GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c, defaultBooksPageSize)

	books, total, err := bc.books.ListBooks(c.Request.Context(), limit, offset)
	if err != nil {
		respondAppError(c, err, "list books")
		return
	}

	summaries := make([]*reviews.Summary, 0, len(books))
	for _, book := range books {
		summaries = append(summaries, reviews.NewSummary(book))
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    summaries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(books)) < total,
	})
}
