package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/pkg/ai"
)

// adminDashboard отображает главную страницу админки.
func (h *Handler) adminDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	pending, err := h.feedbackService.ListPending(ctx, 10, 0)
	if err != nil {
		h.logger.Error("Failed to load pending comments for dashboard")
		pending = nil
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"Title":           "Admin — " + h.provider.SiteTitle(ctx),
		"SiteTitle":       h.provider.SiteTitle(ctx),
		"User":            currentUser(c),
		"PendingComments": pending,
		"SermonEnabled":   h.sermonService.Enabled(),
		"Flash":           takeFlash(c),
	})
}

// --- Церкви ---

func (h *Handler) adminListChurches(c *gin.Context) {
	filter := models.ChurchFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []models.ChurchStatus{models.ChurchStatus(status)}
	}
	if countyID, err := strconv.ParseInt(c.Query("county_id"), 10, 64); err == nil {
		filter.CountyID = &countyID
	}

	churches, err := h.churchService.ListAll(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, churches)
}

func (h *Handler) adminGetChurch(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	church, err := h.churchService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, church)
}

func (h *Handler) adminCreateChurch(c *gin.Context) {
	var req churchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	church := req.toModel(0)
	if err := h.churchService.Create(c.Request.Context(), church); err != nil {
		handleServiceError(c, err)
		return
	}
	h.recordAudit(c, church.ID, "Church created")
	c.JSON(http.StatusCreated, church)
}

func (h *Handler) adminUpdateChurch(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var req churchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	church := req.toModel(id)
	if err := h.churchService.Update(c.Request.Context(), church); err != nil {
		handleServiceError(c, err)
		return
	}
	h.recordAudit(c, id, "Church updated")
	c.JSON(http.StatusOK, church)
}

func (h *Handler) adminDeleteChurch(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.churchService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Справочники ---

func (h *Handler) adminListCounties(c *gin.Context) {
	counties, err := h.churchService.Counties(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counties)
}

func (h *Handler) adminGetCounty(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	county, err := h.churchService.CountyByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, county)
}

func (h *Handler) adminCreateCounty(c *gin.Context) {
	var req countyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	county := req.toModel(0)
	if err := h.churchService.CreateCounty(c.Request.Context(), county); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, county)
}

func (h *Handler) adminUpdateCounty(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var req countyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	county := req.toModel(id)
	if err := h.churchService.UpdateCounty(c.Request.Context(), county); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, county)
}

func (h *Handler) adminDeleteCounty(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.churchService.DeleteCounty(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminListAffiliations(c *gin.Context) {
	affiliations, err := h.churchService.Affiliations(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliations)
}

func (h *Handler) adminGetAffiliation(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	affiliation, err := h.churchService.AffiliationByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliation)
}

func (h *Handler) adminCreateAffiliation(c *gin.Context) {
	var req affiliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	affiliation := req.toModel(0)
	if err := h.churchService.CreateAffiliation(c.Request.Context(), affiliation); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, affiliation)
}

func (h *Handler) adminUpdateAffiliation(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	var req affiliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	affiliation := req.toModel(id)
	if err := h.churchService.UpdateAffiliation(c.Request.Context(), affiliation); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, affiliation)
}

func (h *Handler) adminDeleteAffiliation(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.churchService.DeleteAffiliation(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Модерация отзывов ---

func (h *Handler) adminListPendingComments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	comments, err := h.feedbackService.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) adminApproveComment(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.Approve(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (h *Handler) adminRejectComment(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.Reject(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) adminDeleteComment(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}
	if err := h.feedbackService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Настройки сайта ---

func (h *Handler) adminListSettings(c *gin.Context) {
	rows, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) adminUpsertSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	key := c.Param("key")
	if err := h.settingsService.Upsert(c.Request.Context(), key, req.Value); err != nil {
		handleServiceError(c, err)
		return
	}
	settingsMutationsTotal.WithLabelValues("upsert").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "saved", "key": key})
}

func (h *Handler) adminDeleteSetting(c *gin.Context) {
	key := c.Param("key")
	if err := h.settingsService.Delete(c.Request.Context(), key); err != nil {
		handleServiceError(c, err)
		return
	}
	settingsMutationsTotal.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

// --- Извлечение данных о проповедях ---

func (h *Handler) adminExtractSermon(c *gin.Context) {
	if !h.sermonService.Enabled() {
		h.notFound(c)
		return
	}

	var req sermonExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Text == "" && req.VideoURL == "") {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	var (
		info *ai.SermonInfo
		err  error
	)
	if req.VideoURL != "" {
		info, err = h.sermonService.ExtractFromVideo(c.Request.Context(), req.VideoURL)
	} else {
		info, err = h.sermonService.Extract(c.Request.Context(), req.Text)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// --- Пользователи ---

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) adminUpdateUserRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	var req userRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleContributor {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	if err := h.userRepo.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// recordAudit пишет системную заметку об изменении церкви.
func (h *Handler) recordAudit(c *gin.Context, churchID int64, message string) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if err := h.feedbackService.RecordSystemNote(c.Request.Context(), churchID, user.UserID, message); err != nil {
		h.logger.Warn("Failed to record audit note")
	}
}

// paramInt64 парсит числовой path-параметр, отвечая 400 при мусоре.
func paramInt64(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		handleServiceError(c, models.ErrInvalidInput)
		return 0, false
	}
	return id, true
}
