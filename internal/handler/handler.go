// Package handler implements the HTTP endpoints of the contact API.
package handler

import (
	"net/http"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/duccv/contact-addin/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// internalError logs err and answers 500. The error text is exposed only
// when debug is set.
func internalError(c *gin.Context, err error, message string, debug bool) {
	logger.WithRequest(logger.FromContext(c.Request.Context()), c.Request).
		Error(message, zap.Error(err))

	res := constant.INTERNAL_SERVER_ERROR
	res.Error = message
	if debug {
		res.Msg = err.Error()
	} else {
		res.Msg = "Please try again later"
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, res)
}

func requester(c *gin.Context) string {
	p, _ := middleware.PrincipalFrom(c)
	return p.Email
}

// respondWithETag writes body with an ETag derived from stable, which must
// exclude volatile fields such as timestamps. A matching If-None-Match
// yields 304 with no body.
func respondWithETag(c *gin.Context, stable any, body any) {
	etag := util.StrongETag(stable)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, no-cache")
	if util.ETagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, body)
}
