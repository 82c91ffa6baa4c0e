// Package policy wires the gate to the application's fixed roles and
// ownership rules.
package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

// Ownable is implemented by models that belong to a user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows an action only when the user owns the resource.
// For list/create (nil resource) the profile permission already decided.
type OwnershipPolicy struct{}

func (OwnershipPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// Resources without an owner cannot pass an ownership check.
		return false
	}
	return ownable.GetUserID() == userID
}

// AdminBypass wraps another policy, letting admins through unconditionally.
type AdminBypass struct {
	Inner   gate.Policy
	IsAdmin func(ctx context.Context, userID uint) bool
}

func (p AdminBypass) Can(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.IsAdmin != nil && p.IsAdmin(ctx, userID) {
		return true
	}
	return p.Inner.Can(ctx, userID, action, resource)
}

// Permission sets per role. ADMIN manages everything; DEV additionally
// deletes catalog entries; USER contributes to the catalog and manages their
// own projects (ownership enforced by OwnershipPolicy). Catalog deletion is
// restricted because it cascades into every kit and project referencing the
// entry.
var roleProfiles = map[string]*gate.StaticProfile{
	models.RoleAdmin: gate.NewStaticProfile(models.RoleAdmin, gate.PermissionSuperAdmin),
	models.RoleDev: gate.NewStaticProfile(models.RoleDev,
		"product:*", "kit:*", "project:*"),
	models.RoleUser: gate.NewStaticProfile(models.RoleUser,
		"product:view", "product:list", "product:create", "product:update",
		"kit:view", "kit:list", "kit:create", "kit:update",
		"project:*"),
}

// RoleResolver resolves a user's gate profile from their stored role.
type RoleResolver struct {
	DB *gorm.DB
}

func NewRoleResolver(db *gorm.DB) *RoleResolver { return &RoleResolver{DB: db} }

// Resolve loads the user with their role and maps the role name onto the
// static permission profiles above. Unknown roles get the USER profile.
func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Preload("Role").First(&user, userID).Error; err != nil {
		return nil, err
	}
	if p, ok := roleProfiles[user.Role.Name]; ok {
		return p, nil
	}
	return roleProfiles[models.RoleUser], nil
}

// NewGate builds the application gate: cached role resolution, ownership on
// projects with admin bypass.
func NewGate(db *gorm.DB, resolver gate.ProfileResolver) *gate.Gate {
	g := gate.New(resolver)
	isAdmin := func(ctx context.Context, userID uint) bool {
		p, err := resolver.Resolve(ctx, userID)
		return err == nil && p != nil && p.HasPermission(gate.PermissionSuperAdmin)
	}
	g.Register("project", AdminBypass{Inner: OwnershipPolicy{}, IsAdmin: isAdmin})
	return g
}
