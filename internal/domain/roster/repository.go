package roster

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Registry stores teacher-created classes. The registry is append-only:
// classes are never edited or removed once registered, and implementations
// merge the custom list with the built-in seed list on read.
type Registry interface {
	// ListClasses returns the seed classes followed by all custom
	// classes, in registration order.
	ListClasses(ctx context.Context) ([]*ClassRoster, error)

	// GetByName returns the class whose display name matches exactly.
	// Returns shared.ErrClassNotFound if no such class exists.
	GetByName(ctx context.Context, name string) (*ClassRoster, error)

	// Register appends a custom class.
	// Returns shared.ErrClassAlreadyExists when the name collides with a
	// seed or custom class.
	Register(ctx context.Context, class *ClassRoster) error
}
