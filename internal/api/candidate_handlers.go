package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/services"
)

type respondRequest struct {
	Status models.ParticipantStatus `json:"status"`
}

func (h *handler) getCandidateProfile(c *gin.Context) {
	profile, err := h.services.Candidates.GetCandidateProfile(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) upsertCandidateProfile(c *gin.Context) {
	var input services.CandidateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := h.services.Candidates.UpsertCandidateProfile(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) getExperiences(c *gin.Context) {
	experiences, err := h.services.Candidates.GetExperiences(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, experiences)
}

func (h *handler) addExperience(c *gin.Context) {
	var input services.ExperienceInput
	if !bindJSON(c, &input) {
		return
	}
	experience, err := h.services.Candidates.AddExperience(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, experience)
}

func (h *handler) updateExperience(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.ExperienceInput
	if !bindJSON(c, &input) {
		return
	}
	experience, err := h.services.Candidates.UpdateExperience(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, experience)
}

func (h *handler) deleteExperience(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.DeleteExperience(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getEducations(c *gin.Context) {
	educations, err := h.services.Candidates.GetEducations(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, educations)
}

func (h *handler) addEducation(c *gin.Context) {
	var input services.EducationInput
	if !bindJSON(c, &input) {
		return
	}
	education, err := h.services.Candidates.AddEducation(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, education)
}

func (h *handler) updateEducation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.EducationInput
	if !bindJSON(c, &input) {
		return
	}
	education, err := h.services.Candidates.UpdateEducation(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, education)
}

func (h *handler) deleteEducation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.DeleteEducation(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getCandidateSkills(c *gin.Context) {
	skills, err := h.services.Candidates.GetCandidateSkills(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

func (h *handler) addCandidateSkill(c *gin.Context) {
	var input services.CandidateSkillInput
	if !bindJSON(c, &input) {
		return
	}
	skill, err := h.services.Candidates.AddCandidateSkill(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

func (h *handler) removeCandidateSkill(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.RemoveCandidateSkill(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getSavedJobs(c *gin.Context) {
	saved, err := h.services.Candidates.GetSavedJobs(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *handler) isJobSaved(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	saved, err := h.services.Candidates.IsJobSaved(c.Request.Context(), callerID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

func (h *handler) saveJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.SaveJob(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) unsaveJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.UnsaveJob(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) applyToJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.ApplyInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}
	application, err := h.services.Candidates.ApplyToJob(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

func (h *handler) getMyApplications(c *gin.Context) {
	applications, err := h.services.Candidates.GetMyApplications(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, applications)
}

func (h *handler) withdrawApplication(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Candidates.WithdrawApplication(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getCandidateInterviews(c *gin.Context) {
	interviews, err := h.services.Interviews.GetCandidateInterviews(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, interviews)
}

func (h *handler) respondToInvitation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req respondRequest
	if !bindJSON(c, &req) {
		return
	}
	participant, err := h.services.Interviews.RespondToInvitation(c.Request.Context(), callerID(c), id, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}
