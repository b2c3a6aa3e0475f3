package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/services"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *handler) signUp(c *gin.Context) {
	var input services.SignUpInput
	if !bindJSON(c, &input) {
		return
	}
	session, err := h.services.Auth.SignUp(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *handler) signIn(c *gin.Context) {
	var req signInRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.services.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handler) refreshSession(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.services.Auth.GetSession(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handler) signOut(c *gin.Context) {
	if err := h.services.Auth.SignOut(c.Request.Context(), callerID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// resetPassword answers 202 whether or not the address is registered.
func (h *handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.services.Auth.ResetPassword(c.Request.Context(), req.Email); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *handler) confirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.services.Auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) currentUser(c *gin.Context) {
	profile := h.services.Auth.GetCurrentUser(c.Request.Context(), callerID(c))
	if profile == nil {
		abort(c, http.StatusNotFound, "not_found", "profile not found")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) updateProfile(c *gin.Context) {
	var input services.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := h.services.Auth.UpdateProfile(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) uploadAvatar(c *gin.Context) {
	header, file, ok := uploadedFile(c)
	if !ok {
		return
	}
	defer file.Close()

	profile, err := h.services.Candidates.UploadAvatar(c.Request.Context(), callerID(c), header.Filename, file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
