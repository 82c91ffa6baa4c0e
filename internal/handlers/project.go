package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/auth"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/httpx"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/i18n"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/middleware"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/pdf"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/services"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/validation"
)

type ProjectHandler struct {
	DB      *gorm.DB
	Gate    *gate.Gate
	Svc     *services.ProjectService
	History *services.HistoryService
}

func NewProjectHandler(db *gorm.DB, g *gate.Gate) *ProjectHandler {
	return &ProjectHandler{
		DB:      db,
		Gate:    g,
		Svc:     services.NewProjectService(db),
		History: services.NewHistoryService(db),
	}
}

type projectInput struct {
	Nom         string   `json:"nom"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	SurfaceM2   *float64 `json:"surfaceM2"`
}

// load fetches the project and runs the ownership gate for the given action.
// Writes the error response itself and returns nil when the caller must stop.
func (h *ProjectHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) *models.Project {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := parseID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil
	}
	project, err := h.Svc.Load(id)
	if errors.Is(err, services.ErrProjectNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return nil
	}
	if !h.Gate.Can(r.Context(), uid, action, "project", *project) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil
	}
	return project
}

// List: GET /projects returns the caller's projects; admins see all of them.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	limit, offset := parsePage(r)
	dbq := h.DB.Model(&models.Project{})
	if !h.Gate.Can(r.Context(), uid, gate.ActionList, "project", models.Project{UserID: 0}) {
		dbq = dbq.Where("user_id = ?", uid)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Count(&total)
	var projects []models.Project
	if err := dbq.Preload("ProjectKits.Kit.KitProducts.Product").Order("id desc").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	type projectView struct {
		models.Project
		Totals services.Totals `json:"totals"`
	}
	views := make([]projectView, 0, len(projects))
	for i := range projects {
		views = append(views, projectView{Project: projects[i], Totals: h.Svc.ComputeTotals(&projects[i])})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /projects. Status defaults to ACTIF.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if !h.Gate.Can(r.Context(), uid, gate.ActionCreate, "project", nil) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	var input projectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("nom", input.Nom, v)
	if input.Status != "" && !models.ValidStatus(input.Status) {
		v["status"] = "invalid_status"
	}
	validation.NonNegativePrice("surfaceM2", input.SurfaceM2, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	project := models.Project{
		UserID:      uid,
		Nom:         strings.TrimSpace(input.Nom),
		Description: input.Description,
		Status:      input.Status,
		SurfaceM2:   input.SurfaceM2,
	}
	if project.Status == "" {
		project.Status = models.StatusActif
	}
	if err := h.DB.Create(&project).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "project_create_failed", nil)
		return
	}
	_ = h.History.Record(project.ID, uid, "create", "", "", project.Nom)
	httpx.JSON(w, http.StatusCreated, project)
}

// Get: GET /projects/get?id=. The response embeds the derived totals; they are
// recomputed per request, so caches must stay private.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project := h.load(w, r, gate.ActionView)
	if project == nil {
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	httpx.JSON(w, http.StatusOK, map[string]any{
		"project": project,
		"totals":  h.Svc.ComputeTotals(project),
	})
}

// Update: POST/PUT/PATCH /projects/update?id=. Field changes are recorded in
// the project history.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	project := h.load(w, r, gate.ActionUpdate)
	if project == nil {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	var input projectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	lang := middleware.LangFrom(r)
	if input.Status != "" && !models.ValidStatus(input.Status) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", map[string]string{"status": i18n.T(lang, "invalid_status")})
		return
	}
	if input.SurfaceM2 != nil && *input.SurfaceM2 < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"surfaceM2": "must_not_be_negative"})
		return
	}

	if nom := strings.TrimSpace(input.Nom); nom != "" && nom != project.Nom {
		_ = h.History.Record(project.ID, uid, "update", "nom", project.Nom, nom)
		project.Nom = nom
	}
	if input.Description != "" && input.Description != project.Description {
		_ = h.History.Record(project.ID, uid, "update", "description", project.Description, input.Description)
		project.Description = input.Description
	}
	if input.Status != "" && input.Status != project.Status {
		_ = h.History.Record(project.ID, uid, "update", "status", project.Status, input.Status)
		project.Status = input.Status
	}
	if input.SurfaceM2 != nil {
		old := ""
		if project.SurfaceM2 != nil {
			old = fmt.Sprintf("%g", *project.SurfaceM2)
		}
		_ = h.History.Record(project.ID, uid, "update", "surfaceM2", old, fmt.Sprintf("%g", *input.SurfaceM2))
		project.SurfaceM2 = input.SurfaceM2
	}
	if err := h.DB.Save(project).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

// Delete: POST/DELETE /projects/delete?id=. Kit lines and history go with it.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	project := h.load(w, r, gate.ActionDelete)
	if project == nil {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectKit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, project.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": project.ID})
}

// AddKits: POST /projects/kits?id=. Duplicate kit lines merge by summing
// quantities, and quantities accumulate into rows that already exist.
func (h *ProjectHandler) AddKits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	project := h.load(w, r, gate.ActionUpdate)
	if project == nil {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	var input struct {
		Kits []services.KitLine `json:"kits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if len(input.Kits) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"kits": "required"})
		return
	}
	for _, l := range input.Kits {
		if l.KitID == 0 || l.Quantite < 1 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"kits": "invalid_line"})
			return
		}
	}
	if err := h.Svc.AddKits(project.ID, input.Kits); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "add_kits_failed", nil)
		return
	}
	_ = h.History.Record(project.ID, uid, "add_kits", "kits", "", fmt.Sprintf("%d kit(s)", len(services.MergeKitLines(input.Kits))))
	project, err := h.Svc.Load(project.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"project": project,
		"totals":  h.Svc.ComputeTotals(project),
	})
}

// RemoveKit: POST/DELETE /projects/kits/delete?id=&kitId=.
func (h *ProjectHandler) RemoveKit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	project := h.load(w, r, gate.ActionUpdate)
	if project == nil {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	kitID := parseQueryUint(r, "kitId")
	if kitID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("project_id = ? AND kit_id = ?", project.ID, kitID).Delete(&models.ProjectKit{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	_ = h.History.Record(project.ID, uid, "remove_kit", "kits", fmt.Sprintf("kit %d", kitID), "")
	httpx.JSON(w, http.StatusOK, map[string]any{"removed": kitID})
}

// Summary: GET /projects/summary?id=. Full derived block: four price totals,
// costs and margins per mode, per-kit breakdown, environmental savings,
// break-even point.
func (h *ProjectHandler) Summary(w http.ResponseWriter, r *http.Request) {
	project := h.load(w, r, gate.ActionView)
	if project == nil {
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	httpx.JSON(w, http.StatusOK, h.Svc.Summarize(project))
}

// ListHistory: GET /projects/history?id=, newest first.
func (h *ProjectHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	project := h.load(w, r, gate.ActionView)
	if project == nil {
		return
	}
	entries, err := h.History.List(project.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_history", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}

// PDF: GET /projects/pdf?id= streams the summary document.
func (h *ProjectHandler) PDF(w http.ResponseWriter, r *http.Request) {
	project := h.load(w, r, gate.ActionView)
	if project == nil {
		return
	}
	doc, err := pdf.ProjectPDF(pdf.ProjectData{
		Nom:         project.Nom,
		Description: project.Description,
		Status:      project.Status,
		Date:        time.Now().Format("02/01/2006"),
		Summary:     h.Svc.Summarize(project),
	})
	if err != nil {
		lang := middleware.LangFrom(r)
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", map[string]string{"message": i18n.T(lang, "pdf_generation_failed")})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "projet-"+sanitizeFilename(project.Nom)+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = searchSafe.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "projet"
	}
	return name
}
