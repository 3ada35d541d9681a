package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/auth"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

func (h HandlerSet) LoginForm(c *gin.Context) {
	if session.From(c).Authenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.renderLogin(c, "", "", "")
}

func (h HandlerSet) Login(c *gin.Context) {
	username := c.PostForm("username")
	res := h.auth.Login(c.Request.Context(), c.Writer, session.From(c), username, c.PostForm("password"))
	if res.State != auth.StateAuthenticated {
		h.renderLogin(c, username, res.Message, "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h HandlerSet) SignUpForm(c *gin.Context) {
	p := views.NewPage(session.From(c), "Register", "")
	p.Data = views.AuthData{}
	c.HTML(http.StatusOK, "register", p)
}

func (h HandlerSet) SignUp(c *gin.Context) {
	username := c.PostForm("username")
	res := h.auth.Register(c.Request.Context(), username, c.PostForm("password"))
	if res.State == auth.StateError {
		p := views.NewPage(session.From(c), "Register", "")
		p.Error = res.Message
		p.Data = views.AuthData{Username: username}
		c.HTML(http.StatusOK, "register", p)
		return
	}
	h.renderLogin(c, username, "", res.Message)
}

// Logout clears the session and ends its background refresh; the next render
// is the login gate.
func (h HandlerSet) Logout(c *gin.Context) {
	s := session.From(c)
	if err := h.sessions.SignOut(c.Request.Context(), c.Writer, s); err != nil {
		h.log.Error().Err(err).Msg("sign out failed")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h HandlerSet) renderLogin(c *gin.Context, username, errMsg, notice string) {
	p := views.NewPage(session.From(c), "Login", "")
	p.Error = errMsg
	p.Data = views.AuthData{Username: username, Notice: notice}
	c.HTML(http.StatusOK, "login", p)
}
