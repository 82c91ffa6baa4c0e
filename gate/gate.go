// Package gate is the authorization checkpoint of the application.
// A Gate combines role-profile permissions ("resource:action", with
// wildcards) and optional per-resource policies (ownership checks).
package gate

import "context"

// Policy defines resource-specific authorization rules, typically ownership.
// For list/create checks resource may be nil.
type Policy interface {
	Can(ctx context.Context, userID uint, action Action, resource any) bool
}

// Gate authorizes a user id against profile permissions, then against the
// resource policy registered for the resource type, when one exists.
type Gate struct {
	resolver ProfileResolver
	policies map[string]Policy
}

// New creates a gate backed by the given profile resolver.
func New(resolver ProfileResolver) *Gate {
	return &Gate{resolver: resolver, policies: make(map[string]Policy)}
}

// Register adds a resource-specific policy (e.g. "project" ownership).
// Overwrites any existing policy for that type.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize returns nil when the user may perform action on resourceType.
// The profile permission is checked first; a registered policy is then
// consulted when a concrete resource is provided.
func (g *Gate) Authorize(ctx context.Context, userID uint, action Action, resourceType string, resource any) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok && !policy.Can(ctx, userID, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate) Can(ctx context.Context, userID uint, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, userID, action, resourceType, resource) == nil
}
