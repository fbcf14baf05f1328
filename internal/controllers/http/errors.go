package http

import (
	"errors"
	"net/http"
	"net/url"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// apiStatus maps a service error to an HTTP status and a client-safe message.
func apiStatus(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "authentication credentials were not provided"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you do not have permission to perform this action"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, domain.ErrEmptyCart.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeAPIError(c *gin.Context, err error) {
	status, msg := apiStatus(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Request.URL.Path, "method": c.Request.Method}).Errorf("request failed: %v", err)
	}

	body := gin.H{"detail": msg}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// renderPageError handles every page error except validation, which the
// page re-renders its form for.
func renderPageError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrAuthRequired) {
		redirectToLogin(c)
		return
	}
	status, msg := apiStatus(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Request.URL.Path, "method": c.Request.Method}).Errorf("page failed: %v", err)
	}
	render(c, status, "error.html", gin.H{"status": status, "message": msg})
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// safeNext only allows local redirects.
func safeNext(next string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return "/"
	}
	return next
}
