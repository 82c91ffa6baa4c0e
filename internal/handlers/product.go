package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/auth"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/httpx"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/validation"
)

var searchSafe = regexp.MustCompile(`[^a-zA-Z0-9 \-_éèêàâîôûç]`)

// parseID reads an id from query string or form value.
func parseID(r *http.Request) uint {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		idStr = r.FormValue("id")
	}
	id, _ := strconv.Atoi(idStr)
	if id <= 0 {
		return 0
	}
	return uint(id)
}

// parseQueryUint reads a named positive integer query parameter, 0 on failure.
func parseQueryUint(r *http.Request, name string) uint {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	if n <= 0 {
		return 0
	}
	return uint(n)
}

// parsePage returns limit/offset from the query string (limit, page).
func parsePage(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

type ProductHandler struct {
	DB   *gorm.DB
	Gate *gate.Gate
}

func NewProductHandler(db *gorm.DB, g *gate.Gate) *ProductHandler {
	return &ProductHandler{DB: db, Gate: g}
}

// List: GET /products with pagination and name/reference search.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Product{})
	if query != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(query, "")) + "%"
		dbq = dbq.Where("lower(nom) LIKE ? OR lower(reference) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

func validateProduct(p *models.Product) validation.Violations {
	v := validation.Violations{}
	validation.Required("nom", p.Nom, v)
	validation.NonNegativePrice("prixVenteAchat", p.PrixVenteAchat, v)
	validation.NonNegativePrice("prixAchatAchat", p.PrixAchatAchat, v)
	validation.NonNegativePrice("prixVenteLocation1An", p.PrixVenteLocation1An, v)
	validation.NonNegativePrice("prixVenteLocation2Ans", p.PrixVenteLocation2Ans, v)
	validation.NonNegativePrice("prixVenteLocation3Ans", p.PrixVenteLocation3Ans, v)
	validation.NonNegativePrice("surfaceM2", p.SurfaceM2, v)
	return v
}

// Create: POST /products. The payload carries the product fields directly;
// id and ownership are always taken from the session, never the body.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionCreate, "product", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var input models.Product
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.ID = 0
	input.UserID = uid
	input.Reference = strings.ToUpper(strings.TrimSpace(input.Reference))
	if v := validateProduct(&input); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.DB.Create(&input).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "product_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, input)
}

// Update: POST/PUT/PATCH /products/update?id=. Non-nil pointer fields and
// non-empty strings of the payload overwrite the stored record.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionUpdate, "product", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id := parseID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var input models.Product
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.ID = p.ID
	input.UserID = p.UserID
	v := validateProduct(&input)
	delete(v, "nom") // partial update: an absent nom keeps the stored one
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	// Updates skips zero values: unset strings stay, nil prices stay.
	if err := h.DB.Model(&p).Updates(input).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	if err := h.DB.First(&p, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST/DELETE /products/delete?id=. Soft delete; kit lines referencing
// the product keep their rows and are skipped by the aggregators until the
// product is restored or the line removed.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionDelete, "product", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id := parseID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.DB.Where("id = ?", id).Delete(&models.Product{}).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
