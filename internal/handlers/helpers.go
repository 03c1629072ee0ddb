package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "cashdash/internal/errors"
	"cashdash/internal/logger"
	"cashdash/internal/models"
)

// ErrorBody is the error object inside ErrorResponse.
type ErrorBody struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"Invalid input"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}

	c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorBody{Code: appErr.Code, Message: appErr.Message}})
}

// DateRangeQuery is an optional inclusive from_date/to_date pair in YYYY-MM-DD form.
type DateRangeQuery struct {
	FromDate string `form:"from_date" binding:"omitempty,calendar_date"`
	ToDate   string `form:"to_date" binding:"omitempty,calendar_date"`
}

// bindDateRange parses the from_date/to_date query parameters. Absent bounds are nil.
func bindDateRange(c *gin.Context) (from, to *models.Date, err error) {
	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date, use YYYY-MM-DD")
	}
	if q.FromDate != "" {
		d := models.Date(q.FromDate)
		from = &d
	}
	if q.ToDate != "" {
		d := models.Date(q.ToDate)
		to = &d
	}
	return from, to, nil
}

// Clock returns the current time; handlers take one so tests can pin "today".
type Clock func() time.Time

func (clk Clock) today() models.Date {
	if clk == nil {
		return models.NewDate(time.Now())
	}
	return models.NewDate(clk())
}
