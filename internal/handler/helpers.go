package handler

import (
	"net/http"
	"strconv"

	"github.com/fsegs/survex-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// paramID parses a positive integer path parameter, writing the error
// response itself on failure.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
