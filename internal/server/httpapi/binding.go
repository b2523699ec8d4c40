package httpapi

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		common.UseTagNames(v)
	}
}

// pageQuery is the page and limit of a list route. Zero means absent.
type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) values() (int, int) {
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = services.DefaultPageSize
	}
	return page, limit
}

// bindMessage describes why a body or query failed to bind. Validation
// failures name the field, anything else is reported as malformed input.
func bindMessage(err error, malformed string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return common.Invalid(err).Error()
	}
	return malformed
}

func bindPage(c *gin.Context) (int, int, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, bindMessage(err, "page and limit must be integers"))
		return 0, 0, false
	}
	page, limit := q.values()
	return page, limit, true
}
