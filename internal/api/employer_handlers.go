package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/services"
)

type positionRequest struct {
	Position string `json:"position"`
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

type applicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

type noShowRequest struct {
	CandidateID uint `json:"candidate_id"`
}

func (h *handler) getEmployerProfile(c *gin.Context) {
	employer := h.services.Employers.GetEmployerProfile(c.Request.Context(), callerID(c))
	if employer == nil {
		abort(c, http.StatusNotFound, "not_found", "employer profile not found")
		return
	}
	c.JSON(http.StatusOK, employer)
}

func (h *handler) createEmployerProfile(c *gin.Context) {
	var input services.EmployerProfileInput
	if !bindJSON(c, &input) {
		return
	}
	employer, err := h.services.Employers.CreateEmployerProfile(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employer)
}

func (h *handler) updateEmployerProfile(c *gin.Context) {
	var req positionRequest
	if !bindJSON(c, &req) {
		return
	}
	employer, err := h.services.Employers.UpdatePosition(c.Request.Context(), callerID(c), req.Position)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, employer)
}

func (h *handler) getJobStats(c *gin.Context) {
	stats, err := h.services.Employers.GetJobStats(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) getEmployerJobs(c *gin.Context) {
	jobs, err := h.services.Employers.GetEmployerJobs(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *handler) createJob(c *gin.Context) {
	var input services.JobInput
	if !bindJSON(c, &input) {
		return
	}
	job, err := h.services.Jobs.CreateJob(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *handler) updateJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateJobInput
	if !bindJSON(c, &input) {
		return
	}
	job, err := h.services.Jobs.UpdateJob(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handler) toggleJobActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IsActive == nil {
		badRequest(c, "is_active is required")
		return
	}
	job, err := h.services.Jobs.ToggleActive(c.Request.Context(), callerID(c), id, *req.IsActive)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handler) deleteJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Jobs.DeleteJob(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getJobApplications(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	applications, err := h.services.Jobs.GetApplications(c.Request.Context(), callerID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, applications)
}

func (h *handler) getCandidates(c *gin.Context) {
	filter := services.CandidateFilter{Status: c.Query("status"), Query: c.Query("q")}
	rows, err := h.services.Employers.GetCandidates(c.Request.Context(), callerID(c), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *handler) updateApplicationStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req applicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	application, err := h.services.Employers.UpdateApplicationStatus(c.Request.Context(), callerID(c), id, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}

func (h *handler) getSchedulableApplications(c *gin.Context) {
	var jobID uint
	if c.Query("job_id") != "" {
		id, err := intQuery(c, "job_id")
		if err != nil {
			badRequest(c, "job_id must be a positive integer")
			return
		}
		jobID = uint(id)
	}
	applications, err := h.services.Interviews.GetSchedulableApplications(c.Request.Context(), callerID(c), jobID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, applications)
}

func (h *handler) scheduleInterviews(c *gin.Context) {
	var input services.ScheduleInput
	if !bindJSON(c, &input) {
		return
	}
	interviews, err := h.services.Interviews.ScheduleInterviews(c.Request.Context(), callerID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interviews)
}

func (h *handler) getInterviews(c *gin.Context) {
	status := models.InterviewStatus(c.Query("status"))
	interviews, err := h.services.Interviews.GetInterviews(c.Request.Context(), callerID(c), status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, interviews)
}

func (h *handler) getInterview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	interview, err := h.services.Interviews.GetInterview(c.Request.Context(), callerID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (h *handler) updateInterview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateInterviewInput
	if !bindJSON(c, &input) {
		return
	}
	interview, err := h.services.Interviews.UpdateInterview(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, interview)
}

func (h *handler) markNoShow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req noShowRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.CandidateID == 0 {
		badRequest(c, "candidate_id is required")
		return
	}
	if err := h.services.Interviews.MarkNoShow(c.Request.Context(), callerID(c), id, req.CandidateID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
