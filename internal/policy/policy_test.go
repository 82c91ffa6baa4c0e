package policy

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

func setupPolicyDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, roleName string) models.User {
	t.Helper()
	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = models.Role{Name: roleName}
		if err := db.Create(&role).Error; err != nil {
			t.Fatalf("role: %v", err)
		}
	}
	u := models.User{Email: email, Password: "x", RoleID: role.ID}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func TestRoleResolverMapsRoles(t *testing.T) {
	db := setupPolicyDB(t)
	admin := seedUser(t, db, "a@test", models.RoleAdmin)
	user := seedUser(t, db, "u@test", models.RoleUser)
	unknown := seedUser(t, db, "x@test", "LEGACY_ROLE")

	r := NewRoleResolver(db)
	ctx := context.Background()

	p, err := r.Resolve(ctx, admin.ID)
	if err != nil || !p.HasPermission(gate.PermissionSuperAdmin) {
		t.Fatalf("admin profile wrong: %v", err)
	}
	p, err = r.Resolve(ctx, user.ID)
	if err != nil || p.HasPermission("product:delete") {
		t.Fatalf("user must not delete products")
	}
	if !p.HasPermission("project:create") {
		t.Fatal("user must create projects")
	}
	p, err = r.Resolve(ctx, unknown.ID)
	if err != nil || p.Name() != models.RoleUser {
		t.Fatalf("unknown role should fall back to USER, got %v", p.Name())
	}
}

func TestGateOwnershipWithAdminBypass(t *testing.T) {
	db := setupPolicyDB(t)
	admin := seedUser(t, db, "a@test", models.RoleAdmin)
	alice := seedUser(t, db, "alice@test", models.RoleUser)
	bob := seedUser(t, db, "bob@test", models.RoleUser)

	g := NewGate(db, NewRoleResolver(db))
	ctx := context.Background()
	project := models.Project{Nom: "Chantier", UserID: alice.ID}

	if !g.Can(ctx, alice.ID, gate.ActionUpdate, "project", project) {
		t.Fatal("owner must update their project")
	}
	if g.Can(ctx, bob.ID, gate.ActionUpdate, "project", project) {
		t.Fatal("non-owner must be denied")
	}
	if !g.Can(ctx, admin.ID, gate.ActionDelete, "project", project) {
		t.Fatal("admin bypass must allow any project")
	}
}
