package rest

import (
	"net/http"
	"strconv"
	"time"

	"payvance/domain"
	"payvance/pkg/response"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// errorJSON writes the uniform error envelope, using the status carried by
// an application error and 500 for everything else.
func errorJSON(c echo.Context, err error) error {
	if appErr, ok := domain.AsAppError(err); ok {
		return c.JSON(appErr.Code, response.Error(appErr.Message))
	}
	return c.JSON(http.StatusInternalServerError, response.Error("internal server error"))
}

// authedUserID pulls the user id set by the auth middleware.
func authedUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// paramUint parses a numeric path parameter.
func paramUint(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrValidation("invalid " + name)
	}
	return uint(id), nil
}

// dateRangeQuery reads start_date/end_date query params, defaulting to the
// last 30 days when absent.
func dateRangeQuery(c echo.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := c.QueryParam("start_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation("invalid start_date, expected YYYY-MM-DD")
		}
		start = parsed
	}

	if raw := c.QueryParam("end_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation("invalid end_date, expected YYYY-MM-DD")
		}
		// Make the end date inclusive of its whole day.
		end = parsed.AddDate(0, 0, 1)
	}

	return start, end, nil
}
