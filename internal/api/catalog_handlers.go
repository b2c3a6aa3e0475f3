package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/jobconnect/jobboard-api/internal/services"
)

func (h *handler) getJobs(c *gin.Context) {
	filter := repositories.JobFilter{
		Title:           c.Query("title"),
		Location:        c.Query("location"),
		JobType:         models.JobType(c.Query("job_type")),
		ExperienceLevel: models.ExperienceLevel(c.Query("experience_level")),
	}

	var err error
	if raw := c.Query("company_id"); raw != "" {
		var id uint64
		if id, err = strconv.ParseUint(raw, 10, 64); err != nil {
			badRequest(c, "company_id must be a positive integer")
			return
		}
		filter.CompanyID = uint(id)
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		badRequest(c, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, err = intQuery(c, "offset"); err != nil {
		badRequest(c, "offset must be a non-negative integer")
		return
	}

	jobs, err := h.services.Jobs.GetJobs(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err == nil && n < 0 {
		return 0, strconv.ErrRange
	}
	return n, err
}

func (h *handler) getJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	job, err := h.services.Jobs.GetJobByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *handler) getCompanies(c *gin.Context) {
	companies, err := h.services.Companies.GetCompanies(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (h *handler) getCompany(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	company, err := h.services.Companies.GetCompanyByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *handler) createCompany(c *gin.Context) {
	var input services.CompanyInput
	if !bindJSON(c, &input) {
		return
	}
	company, err := h.services.Companies.CreateCompany(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *handler) updateCompany(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateCompanyInput
	if !bindJSON(c, &input) {
		return
	}
	company, err := h.services.Companies.UpdateCompany(c.Request.Context(), callerID(c), id, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *handler) uploadLogo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	header, file, ok := uploadedFile(c)
	if !ok {
		return
	}
	defer file.Close()

	company, err := h.services.Companies.UploadLogo(c.Request.Context(), callerID(c), id, header.Filename, file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *handler) getSkills(c *gin.Context) {
	var (
		skills []models.Skill
		err    error
	)
	if q := c.Query("q"); q != "" {
		skills, err = h.services.Skills.SearchSkills(c.Request.Context(), q)
	} else {
		skills, err = h.services.Skills.GetSkills(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

func (h *handler) createSkill(c *gin.Context) {
	var input services.SkillInput
	if !bindJSON(c, &input) {
		return
	}
	skill, err := h.services.Skills.CreateSkill(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}
