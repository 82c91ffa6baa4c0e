package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/auth"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/db"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

func setupServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedRoles(dbi); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return New(dbi), dbi
}

func sessionFor(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "moduloop_session" {
			return c
		}
	}
	t.Fatalf("no session cookie")
	return nil
}

func createUser(t *testing.T, dbi *gorm.DB, email, roleName string) models.User {
	t.Helper()
	var role models.Role
	if err := dbi.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("role %s: %v", roleName, err)
	}
	u := models.User{Email: email, Password: "hash", RoleID: role.ID}
	if err := dbi.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func doJSON(t *testing.T, h http.Handler, method, path string, sess *http.Cookie, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req.AddCookie(sess)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h, _ := setupServer(t)
	rr := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestSignupLoginMe(t *testing.T) {
	h, _ := setupServer(t)
	rr := doJSON(t, h, http.MethodPost, "/signup", nil, map[string]string{
		"email": "Alice@Example.com", "password": "motdepasse", "nom": "Durand", "prenom": "Alice",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	// duplicate email rejected
	rr = doJSON(t, h, http.MethodPost, "/signup", nil, map[string]string{"email": "alice@example.com", "password": "motdepasse"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodPost, "/login", nil, map[string]string{"email": "alice@example.com", "password": "motdepasse"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	var sess *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "moduloop_session" {
			sess = c
		}
	}
	if sess == nil {
		t.Fatalf("login did not set session cookie")
	}
	rr = doJSON(t, h, http.MethodGet, "/me", sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200 got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "alice@example.com") {
		t.Fatalf("me body missing email: %s", rr.Body.String())
	}
	rr = doJSON(t, h, http.MethodPost, "/login", nil, map[string]string{"email": "alice@example.com", "password": "mauvais-mdp"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401 got %d", rr.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h, _ := setupServer(t)
	for _, path := range []string{"/products", "/kits", "/projects", "/projects/summary?id=1", "/me"} {
		rr := doJSON(t, h, http.MethodGet, path, nil, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
			t.Fatalf("%s: expected JSON 401, got Content-Type %q", path, ct)
		}
	}
}

func TestProductCRUDAndPermissions(t *testing.T) {
	h, dbi := setupServer(t)
	user := createUser(t, dbi, "user@example.com", models.RoleUser)
	admin := createUser(t, dbi, "admin@example.com", models.RoleAdmin)
	userSess := sessionFor(t, user.ID)
	adminSess := sessionFor(t, admin.ID)

	rr := doJSON(t, h, http.MethodPost, "/products", userSess, map[string]any{
		"nom": "Bureau", "reference": "bu-01", "prixVenteAchat": 100.0, "prixVenteLocation1An": 10.0,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var created models.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Reference != "BU-01" {
		t.Fatalf("reference not normalized: %q", created.Reference)
	}
	if created.UserID != user.ID {
		t.Fatalf("creator not recorded: %d", created.UserID)
	}

	// negative price rejected
	rr = doJSON(t, h, http.MethodPost, "/products", userSess, map[string]any{"nom": "X", "prixVenteAchat": -1.0})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("negative price: expected 400 got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/products?q=bureau", userSess, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Bureau") {
		t.Fatalf("list: got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/products/update?id=%d", created.ID), userSess, map[string]any{"nom": "Bureau XL"})
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Bureau XL") {
		t.Fatalf("update: got %d body=%s", rr.Code, rr.Body.String())
	}

	// plain users cannot delete products
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/products/delete?id=%d", created.ID), userSess, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("user delete: expected 403 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/products/delete?id=%d", created.ID), adminSess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestKitCreateMergesDuplicateLines(t *testing.T) {
	h, dbi := setupServer(t)
	user := createUser(t, dbi, "kits@example.com", models.RoleUser)
	sess := sessionFor(t, user.ID)

	prix := 50.0
	product := models.Product{UserID: user.ID, Nom: "Chaise", PrixVenteAchat: &prix}
	if err := dbi.Create(&product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}

	rr := doJSON(t, h, http.MethodPost, "/kits", sess, map[string]any{
		"nom": "Salle réunion",
		"products": []map[string]any{
			{"productId": product.ID, "quantite": 2},
			{"productId": product.ID, "quantite": 3},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create kit: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		ID          uint `json:"id"`
		KitProducts []struct {
			Quantite int `json:"quantite"`
		} `json:"kitProducts"`
		PrixAchat float64 `json:"prixAchat"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.KitProducts) != 1 || out.KitProducts[0].Quantite != 5 {
		t.Fatalf("expected one merged line with quantite 5, got %+v", out.KitProducts)
	}
	if out.PrixAchat != 250 {
		t.Fatalf("expected derived price 250, got %v", out.PrixAchat)
	}
}

func TestProjectLifecycle(t *testing.T) {
	h, dbi := setupServer(t)
	user := createUser(t, dbi, "proj@example.com", models.RoleUser)
	sess := sessionFor(t, user.ID)

	vente := 100.0
	location := 10.0
	product := models.Product{UserID: user.ID, Nom: "Cloison", PrixVenteAchat: &vente, PrixVenteLocation1An: &location}
	if err := dbi.Create(&product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	kit := models.Kit{UserID: user.ID, Nom: "Open space", KitProducts: []models.KitProduct{{ProductID: product.ID, Quantite: 3}}}
	if err := dbi.Create(&kit).Error; err != nil {
		t.Fatalf("kit: %v", err)
	}

	rr := doJSON(t, h, http.MethodPost, "/projects", sess, map[string]any{"nom": "Siège social"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var project models.Project
	if err := json.Unmarshal(rr.Body.Bytes(), &project); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if project.Status != models.StatusActif {
		t.Fatalf("expected default status ACTIF, got %s", project.Status)
	}

	// attach the kit twice: quantities accumulate into one row
	for i := 0; i < 2; i++ {
		rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/projects/kits?id=%d", project.ID), sess, map[string]any{
			"kits": []map[string]any{{"kitId": kit.ID, "quantite": 1}},
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("add kits: expected 200 got %d body=%s", rr.Code, rr.Body.String())
		}
	}
	var lines []models.ProjectKit
	if err := dbi.Where("project_id = ?", project.ID).Find(&lines).Error; err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantite != 2 {
		t.Fatalf("expected one line with quantite 2, got %+v", lines)
	}

	// totals: 100 × 3 per kit × 2 kits
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/get?id=%d", project.ID), sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "private") {
		t.Fatalf("derived totals must not be shared-cacheable, got %q", cc)
	}
	var got struct {
		Totals struct {
			TotalPrix float64 `json:"totalPrix"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Totals.TotalPrix != 600 {
		t.Fatalf("expected totalPrix 600, got %v", got.Totals.TotalPrix)
	}

	// summary carries the four price totals and the break-even point
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/summary?id=%d", project.ID), sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary: expected 200 got %d", rr.Code)
	}
	var summary struct {
		PriceTotals struct {
			Achat       float64 `json:"achat"`
			Location1An float64 `json:"location1an"`
		} `json:"priceTotals"`
		BreakEven *float64 `json:"breakEvenPoint"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.PriceTotals.Achat != 600 || summary.PriceTotals.Location1An != 60 {
		t.Fatalf("unexpected price totals: %+v", summary.PriceTotals)
	}
	if summary.BreakEven == nil || *summary.BreakEven != 10 {
		t.Fatalf("expected break-even 10 months, got %v", summary.BreakEven)
	}

	// status update is validated and recorded in history
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/projects/update?id=%d", project.ID), sess, map[string]any{"status": "N_IMPORTE_QUOI"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/projects/update?id=%d", project.ID), sess, map[string]any{"status": models.StatusEnPause})
	if rr.Code != http.StatusOK {
		t.Fatalf("status update: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/history?id=%d", project.ID), sess, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), models.StatusEnPause) {
		t.Fatalf("history: got %d body=%s", rr.Code, rr.Body.String())
	}

	// detach the kit
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/projects/kits/delete?id=%d&kitId=%d", project.ID, kit.ID), sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove kit: expected 200 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/projects/delete?id=%d", project.ID), sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete project: expected 200 got %d", rr.Code)
	}
}

func TestProjectOwnershipIsolation(t *testing.T) {
	h, dbi := setupServer(t)
	owner := createUser(t, dbi, "owner@example.com", models.RoleUser)
	intruder := createUser(t, dbi, "intruder@example.com", models.RoleUser)
	admin := createUser(t, dbi, "root@example.com", models.RoleAdmin)

	project := models.Project{UserID: owner.ID, Nom: "Confidentiel", Status: models.StatusActif}
	if err := dbi.Create(&project).Error; err != nil {
		t.Fatalf("project: %v", err)
	}

	rr := doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/get?id=%d", project.ID), sessionFor(t, intruder.ID), nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("intruder: expected 403 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/get?id=%d", project.ID), sessionFor(t, owner.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner: expected 200 got %d", rr.Code)
	}
	rr = doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/get?id=%d", project.ID), sessionFor(t, admin.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", rr.Code)
	}
	// listing only returns the caller's projects
	rr = doJSON(t, h, http.MethodGet, "/projects", sessionFor(t, intruder.ID), nil)
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "Confidentiel") {
		t.Fatalf("intruder list: got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestProjectPDF(t *testing.T) {
	h, dbi := setupServer(t)
	user := createUser(t, dbi, "pdf@example.com", models.RoleUser)
	sess := sessionFor(t, user.ID)

	project := models.Project{UserID: user.ID, Nom: "Agence Lyon", Status: models.StatusActif}
	if err := dbi.Create(&project).Error; err != nil {
		t.Fatalf("project: %v", err)
	}
	rr := doJSON(t, h, http.MethodGet, fmt.Sprintf("/projects/pdf?id=%d", project.ID), sess, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF document")
	}
}
