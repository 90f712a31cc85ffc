package controllers

import (
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "token"

func (ctl *Controller) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	session, err := ctl.Auth.Login(c.Request.Context(), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	ctl.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, session)
}

// setSessionCookie mirrors the bearer token into a cookie for browser clients.
func (ctl *Controller) setSessionCookie(c *gin.Context, token string) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ctl.Auth.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ctl.SecureCookies {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, cookie)
}
