package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/auth"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/httpx"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/pricing"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/services"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/validation"
)

type KitHandler struct {
	DB   *gorm.DB
	Gate *gate.Gate
}

func NewKitHandler(db *gorm.DB, g *gate.Gate) *KitHandler {
	return &KitHandler{DB: db, Gate: g}
}

type kitInput struct {
	Nom         string                 `json:"nom"`
	Style       string                 `json:"style"`
	Description string                 `json:"description"`
	SurfaceM2   *float64               `json:"surfaceM2"`
	Products    []services.ProductLine `json:"products"`
}

func (in *kitInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("nom", in.Nom, v)
	validation.NonNegativePrice("surfaceM2", in.SurfaceM2, v)
	for i, l := range in.Products {
		if l.ProductID == 0 {
			v["products"] = "invalid_product"
			break
		}
		validation.PositiveInt("products", in.Products[i].Quantite, v)
	}
	return v
}

// kitView decorates a kit with its derived purchase price and impact, so the
// list screen never recomputes them client-side.
type kitView struct {
	models.Kit
	PrixAchat float64           `json:"prixAchat"`
	Impact    pricing.KitImpact `json:"impact"`
}

func presentKit(k models.Kit) kitView {
	return kitView{
		Kit:       k,
		PrixAchat: pricing.CalculateKitPrice(k.KitProducts, pricing.ModeAchat, pricing.Period1An),
		Impact:    pricing.CalculateKitImpact(k.KitProducts, pricing.ModeAchat),
	}
}

// List: GET /kits with pagination and name/style search.
func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Kit{})
	if query != "" {
		like := "%" + strings.ToLower(searchSafe.ReplaceAllString(query, "")) + "%"
		dbq = dbq.Where("lower(nom) LIKE ? OR lower(style) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var kits []models.Kit
	if err := dbq.Preload("KitProducts.Product").Order("id desc").Limit(limit).Offset(offset).Find(&kits).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_kits", nil)
		return
	}
	views := make([]kitView, 0, len(kits))
	for _, k := range kits {
		views = append(views, presentKit(k))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /kits. Duplicate product lines are merged by summing quantities.
func (h *KitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionCreate, "kit", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var input kitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	kit := models.Kit{
		UserID:      uid,
		Nom:         strings.TrimSpace(input.Nom),
		Style:       strings.TrimSpace(input.Style),
		Description: input.Description,
		SurfaceM2:   input.SurfaceM2,
	}
	for _, l := range services.MergeProductLines(input.Products) {
		kit.KitProducts = append(kit.KitProducts, models.KitProduct{ProductID: l.ProductID, Quantite: l.Quantite})
	}
	if err := h.DB.Create(&kit).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "kit_create_failed", nil)
		return
	}
	if err := h.DB.Preload("KitProducts.Product").First(&kit, kit.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "kit_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, presentKit(kit))
}

// Update: POST/PUT /kits/update?id=. The product list, when present, replaces
// the kit's lines wholesale.
func (h *KitHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionUpdate, "kit", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id := parseID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var kit models.Kit
	if err := h.DB.First(&kit, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var input kitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := input.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		kit.Nom = strings.TrimSpace(input.Nom)
		kit.Style = strings.TrimSpace(input.Style)
		kit.Description = input.Description
		kit.SurfaceM2 = input.SurfaceM2
		if err := tx.Save(&kit).Error; err != nil {
			return err
		}
		if input.Products == nil {
			return nil
		}
		if err := tx.Where("kit_id = ?", kit.ID).Delete(&models.KitProduct{}).Error; err != nil {
			return err
		}
		for _, l := range services.MergeProductLines(input.Products) {
			kp := models.KitProduct{KitID: kit.ID, ProductID: l.ProductID, Quantite: l.Quantite}
			if err := tx.Create(&kp).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	if err := h.DB.Preload("KitProducts.Product").First(&kit, kit.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, presentKit(kit))
}

// Delete: POST/DELETE /kits/delete?id=. Removes the kit and its product lines;
// project lines referencing the kit cascade away with it.
func (h *KitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionDelete, "kit", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	id := parseID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kit_id = ?", id).Delete(&models.KitProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kit_id = ?", id).Delete(&models.ProjectKit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Kit{}, id).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
