package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/backend"
	"printhub/console/internal/models"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

func (h HandlerSet) Settings(c *gin.Context) {
	h.renderSettings(c, http.StatusOK, "", views.NewUserForm{Role: string(models.UserRoleStaff)})
}

func (h HandlerSet) renderSettings(c *gin.Context, status int, errMsg string, form views.NewUserForm) {
	s := session.From(c)
	data := views.SettingsData{NewUser: form}
	if s.IsAdmin() {
		users, err := h.caller(c).ListUsers(c.Request.Context())
		if err != nil {
			data.UsersError = backend.UserMessage(err, "Could not load users")
		}
		data.Users = users
	}

	p := h.page(c, "Settings", "settings")
	p.Error = errMsg
	p.Data = data
	c.HTML(status, "settings", p)
}

func (h HandlerSet) SavePreferences(c *gin.Context) {
	s := session.From(c)
	darkMode := c.PostForm("dark_mode") == "on"
	sidebarOpen := c.PostForm("sidebar_open") == "on"
	if err := h.sessions.SetPreferences(c.Request.Context(), c.Writer, s, darkMode, sidebarOpen); err != nil {
		h.log.Error().Err(err).Msg("save preferences failed")
		h.flash(c, session.FlashError, "Could not save preferences")
	}
	c.Redirect(http.StatusSeeOther, "/settings")
}

func (h HandlerSet) AddUser(c *gin.Context) {
	form := views.NewUserForm{
		Username: strings.TrimSpace(c.PostForm("username")),
		Role:     c.PostForm("role"),
	}
	password := c.PostForm("password")
	role := models.UserRole(form.Role)
	if role == "" {
		role = models.UserRoleStaff
	}

	switch {
	case form.Username == "" || password == "":
		h.renderSettings(c, http.StatusUnprocessableEntity, "Username and password are required", form)
		return
	case !role.Valid():
		h.renderSettings(c, http.StatusUnprocessableEntity, "Role must be admin or staff", form)
		return
	}

	err := h.caller(c).AddUser(c.Request.Context(), backend.AddUserInput{
		Username: form.Username,
		Password: password,
		Role:     role,
	})
	if err != nil {
		h.renderSettings(c, http.StatusOK, backend.UserMessage(err, "Add user failed"), form)
		return
	}

	h.log.Info().Str("username", form.Username).Str("role", string(role)).Msg("user added")
	h.flash(c, session.FlashSuccess, fmt.Sprintf("User %s added", form.Username))
	c.Redirect(http.StatusSeeOther, "/settings")
}

// ConfirmDeleteUser asks before anything is sent to the backend.
func (h HandlerSet) ConfirmDeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c, "User not found")
		return
	}

	p := h.page(c, "Delete user", "settings")
	p.Data = views.ConfirmDeleteUserData{UserID: id, Username: c.Query("username")}
	c.HTML(http.StatusOK, "confirm_delete_user", p)
}

// DeleteUser only calls the backend when the prompt was confirmed; a declined
// prompt leaves the list as it was.
func (h HandlerSet) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c, "User not found")
		return
	}
	if c.PostForm("confirm") != "yes" {
		c.Redirect(http.StatusSeeOther, "/settings")
		return
	}

	if err := h.caller(c).DeleteUser(c.Request.Context(), id); err != nil {
		h.log.Warn().Err(err).Int("user_id", id).Msg("delete user failed")
		h.flash(c, session.FlashError, backend.UserMessage(err, "Delete failed"))
		c.Redirect(http.StatusSeeOther, "/settings")
		return
	}

	h.flash(c, session.FlashSuccess, "User deleted")
	c.Redirect(http.StatusSeeOther, "/settings")
}
