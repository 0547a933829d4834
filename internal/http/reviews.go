package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
	"github.com/mrlokans/bookreviews/internal/entities"
	"github.com/mrlokans/bookreviews/internal/reviews"
)

// AddReviewRequest is the body of PATCH /add-review.
type AddReviewRequest struct {
	BookID uint   `json:"book_id" form:"book_id"`
	Rating int    `json:"rating" form:"rating"`
	Body   string `json:"body" form:"body"`
}

// AddReviewResponse pairs the stored review with the book's new summary.
type AddReviewResponse struct {
	Review  *entities.Review `json:"review"`
	Summary *reviews.Summary `json:"summary"`
}

// ReviewsController serves reviews and book summaries.
type ReviewsController struct {
	reviews ReviewService
	audit   *audit.Service
}

func NewReviewsController(reviewService ReviewService, auditService *audit.Service) *ReviewsController {
	return &ReviewsController{reviews: reviewService, audit: auditService}
}

// AddReview handles PATCH /add-review
func (rc *ReviewsController) AddReview(c *gin.Context) {
	var req AddReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.BookID == 0 {
		respondBadRequest(c, "book_id is required")
		return
	}

	ctx := c.Request.Context()
	userID := auth.GetUserID(c)

	review, err := rc.reviews.AddReview(ctx, req.BookID, userID, req.Rating, req.Body)
	if err != nil {
		respondAppError(c, err, "add review")
		return
	}
	rc.audit.LogReviewAdded(userID, review.BookID, review.ID, review.Rating, origin(c))

	summary, err := rc.reviews.BookSummary(ctx, review.BookID)
	if err != nil {
		respondAppError(c, err, "book summary")
		return
	}

	c.JSON(http.StatusOK, AddReviewResponse{Review: review, Summary: summary})
}

// GetBook handles GET /api/books/:id
func (rc *ReviewsController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := rc.reviews.BookSummary(c.Request.Context(), bookID)
	if err != nil {
		respondAppError(c, err, "book summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListReviews handles GET /api/books/:id/reviews
func (rc *ReviewsController) ListReviews(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := rc.reviews.ListReviews(c.Request.Context(), bookID)
	if err != nil {
		respondAppError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"book_id": bookID,
		"reviews": list,
		"total":   len(list),
	})
}
