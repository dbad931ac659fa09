package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Catalog *services.CatalogService
	Logger  *services.ActivityLogger
}

func NewFoodController(catalog *services.CatalogService, logger *services.ActivityLogger) *FoodController {
	return &FoodController{Catalog: catalog, Logger: logger}
}

// GET /admin/foods?page=&perPage=&q=&category=&sortBy=&sortOrder=
//
// Always 200: a missing catalog yields an empty list marked source=unknown,
// never an error.
func (h *FoodController) List(c *gin.Context) {
	q := services.FoodQuery{
		Page:     intQuery(c, "page", 1),
		PerPage:  intQuery(c, "perPage", 12),
		Text:     c.Query("q"),
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sortBy", "name"),
		Desc:     c.Query("sortOrder") == "desc",
	}
	out := h.Catalog.List(c.Request.Context(), q)

	resp := gin.H{
		"success":    true,
		"foods":      out.Foods,
		"source":     out.Source,
		"pagination": out.Pagination,
	}
	if out.Unavailable {
		resp["message"] = out.Reason
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FoodController) Get(c *gin.Context) {
	id, ok := foodID(c)
	if !ok {
		return
	}
	rec, source, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrFoodNotFound) || errors.Is(err, services.ErrCatalogUnavailable) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "food": rec, "source": source})
}

func (h *FoodController) Create(c *gin.Context) {
	var input services.FoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing food name"})
		return
	}

	rec, source, err := h.Catalog.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrCatalogUnavailable) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "No writable foods table found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "food_created",
		`Food "`+rec.Name+`" created`, adminID, adminName,
		map[string]any{"food_id": rec.ID, "food_name": rec.Name, "category": rec.Category})

	c.JSON(http.StatusOK, gin.H{"success": true, "food": rec, "source": source})
}

func (h *FoodController) Update(c *gin.Context) {
	id, ok := foodID(c)
	if !ok {
		return
	}
	var input services.FoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	if input.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	rec, source, err := h.Catalog.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCatalogUnavailable):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "No writable foods table found"})
		case errors.Is(err, services.ErrFoodNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "food_updated",
		`Food "`+rec.Name+`" updated`, adminID, adminName,
		map[string]any{"food_id": rec.ID, "food_name": rec.Name})

	c.JSON(http.StatusOK, gin.H{"success": true, "food": rec, "source": source})
}

func (h *FoodController) Delete(c *gin.Context) {
	id, ok := foodID(c)
	if !ok {
		return
	}

	// Fetch the name before deleting, for the audit entry.
	name := strconv.FormatUint(uint64(id), 10)
	if rec, _, err := h.Catalog.Get(c.Request.Context(), id); err == nil {
		name = rec.Name
	}

	_, err := h.Catalog.Delete(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCatalogUnavailable):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "No writable foods table found"})
		case errors.Is(err, services.ErrFoodNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Food not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	adminID, adminName := middlewares.AdminIdentity(c)
	h.Logger.Log(c.Request.Context(), "food_deleted",
		`Food "`+name+`" deleted`, adminID, adminName,
		map[string]any{"food_id": id, "food_name": name})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func foodID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
