package gate

// Action is the verb half of a permission: paired with a resource type it
// forms strings like "project:update".
type Action string

// Verbs checked by the catalog and project routes.
const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
