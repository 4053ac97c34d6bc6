package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/export"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// homePage отображает главную страницу со списком округов.
func (h *Handler) homePage(c *gin.Context) {
	ctx := c.Request.Context()

	counties, err := h.churchService.Counties(ctx)
	if err != nil {
		h.logger.Error("Failed to load counties for home page", zap.Error(err))
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":      h.provider.FrontPageTitle(ctx),
		"SiteTitle":  h.provider.SiteTitle(ctx),
		"Tagline":    h.provider.Tagline(ctx),
		"Region":     h.provider.SiteRegion(ctx),
		"LogoURL":    h.provider.LogoURL(ctx),
		"FaviconURL": h.provider.FaviconURL(ctx),
		"Counties":   counties,
		"Flash":      takeFlash(c),
	})
}

// countyPage отображает церкви одного округа.
func (h *Handler) countyPage(c *gin.Context) {
	ctx := c.Request.Context()
	path := c.Param("path")

	county, err := h.churchService.CountyByPath(ctx, path)
	if err != nil {
		if errors.Is(err, models.ErrCountyNotFound) {
			h.notFound(c)
			return
		}
		h.logger.Error("Failed to load county", zap.String("path", path), zap.Error(err))
		h.serverError(c)
		return
	}

	churches, err := h.churchService.ListPublic(ctx, path)
	if err != nil {
		h.logger.Error("Failed to load county churches", zap.String("path", path), zap.Error(err))
		h.serverError(c)
		return
	}

	c.HTML(http.StatusOK, "county.html", gin.H{
		"Title":     county.Name + " — " + h.provider.SiteTitle(c.Request.Context()),
		"SiteTitle": h.provider.SiteTitle(ctx),
		"County":    county,
		"Churches":  churches,
	})
}

// churchPage отображает страницу церкви с одобренными отзывами.
func (h *Handler) churchPage(c *gin.Context) {
	ctx := c.Request.Context()
	path := c.Param("path")

	church, err := h.churchService.GetByPath(ctx, path)
	if err != nil {
		if errors.Is(err, models.ErrChurchNotFound) {
			h.notFound(c)
			return
		}
		h.logger.Error("Failed to load church", zap.String("path", path), zap.Error(err))
		h.serverError(c)
		return
	}
	// Скрытые статусы не публикуются, даже при прямом переходе по URL
	if !church.Status.PubliclyVisible() {
		h.notFound(c)
		return
	}

	comments, err := h.feedbackService.ListForChurch(ctx, church.ID)
	if err != nil {
		h.logger.Error("Failed to load church comments", zap.Int64("churchID", church.ID), zap.Error(err))
		comments = nil // страница важнее отзывов
	}

	c.HTML(http.StatusOK, "church.html", gin.H{
		"Title":           church.Name + " — " + h.provider.SiteTitle(ctx),
		"SiteTitle":       h.provider.SiteTitle(ctx),
		"Church":          church,
		"Comments":        comments,
		"CommentsEnabled": h.provider.CommentsEnabled(ctx),
		"MapsAPIKey":      h.provider.MapsAPIKey(ctx),
		"Flash":           takeFlash(c),
	})
}

// mapData отдает координаты публичных церквей для карты.
func (h *Handler) mapData(c *gin.Context) {
	churches, err := h.churchService.ListPublic(c.Request.Context(), "")
	if err != nil {
		handleServiceError(c, err)
		return
	}

	pins := make([]mapPin, 0, len(churches))
	for _, church := range churches {
		if church.Latitude == nil || church.Longitude == nil {
			continue
		}
		pin := mapPin{
			Name:      church.Name,
			Latitude:  *church.Latitude,
			Longitude: *church.Longitude,
		}
		if church.Path != nil {
			pin.Path = *church.Path
		}
		pins = append(pins, pin)
	}
	c.JSON(http.StatusOK, pins)
}

// submitFeedback принимает отзыв посетителя.
func (h *Handler) submitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		feedbackSubmissionsTotal.WithLabelValues("rejected").Inc()
		handleServiceError(c, models.ErrEmptyComment)
		return
	}

	// Honeypot-поле: молча отбрасываем ботов как успех
	if req.Website != "" {
		feedbackSubmissionsTotal.WithLabelValues("honeypot").Inc()
		c.JSON(http.StatusAccepted, gin.H{"status": "received"})
		return
	}

	comment, err := h.feedbackService.Submit(c.Request.Context(), req.ChurchID, req.Content)
	if err != nil {
		feedbackSubmissionsTotal.WithLabelValues("rejected").Inc()
		handleServiceError(c, err)
		return
	}

	feedbackSubmissionsTotal.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "received",
		"uuid":   comment.UUID.String(),
	})
}

// --- Выгрузки каталога ---

func (h *Handler) exportChurches(c *gin.Context, format, contentType, filename string, marshal func([]*models.Church) ([]byte, error)) {
	churches, err := h.churchService.ListPublic(c.Request.Context(), "")
	if err != nil {
		handleServiceError(c, err)
		return
	}

	data, err := marshal(churches)
	if err != nil {
		h.logger.Error("Failed to export churches", zap.String("format", format), zap.Error(err))
		handleServiceError(c, err)
		return
	}

	exportsTotal.WithLabelValues(format).Inc()
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) exportJSON(c *gin.Context) {
	h.exportChurches(c, "json", "application/json; charset=utf-8", "churches.json", export.JSON)
}

func (h *Handler) exportYAML(c *gin.Context) {
	h.exportChurches(c, "yaml", "application/yaml; charset=utf-8", "churches.yaml", export.YAML)
}

func (h *Handler) exportCSV(c *gin.Context) {
	h.exportChurches(c, "csv", "text/csv; charset=utf-8", "churches.csv", export.CSV)
}

func (h *Handler) exportXLSX(c *gin.Context) {
	h.exportChurches(c, "xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"churches.xlsx", export.XLSX)
}

// serverError отвечает страницей 500.
func (h *Handler) serverError(c *gin.Context) {
	c.Abort()
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{
		"Title": "Something went wrong",
	})
}
