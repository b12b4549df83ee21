package viewability

// ViewToken is the application-level record for a list item's
// viewability. Key is the stable identity used for set membership
// across updates; indices shift as the list changes, keys do not.
type ViewToken struct {
	// Key uniquely identifies the logical item.
	Key string

	// IsViewable reports whether the item currently satisfies the
	// viewability policy.
	IsViewable bool

	// Index is the item's position in the list at token creation.
	Index int

	// Item is the application payload, opaque to the tracker.
	Item any
}

// TokenFunc builds the view token for an item index. It must return the
// same Key for the same logical item across calls.
type TokenFunc func(index int, isViewable bool) ViewToken

// Changed carries one viewability notification.
type Changed struct {
	// ViewableItems is every currently viewable token, in scan order.
	ViewableItems []ViewToken

	// Changed holds the transitions since the last notification:
	// newly viewable tokens first, then departed tokens with
	// IsViewable flipped to false.
	Changed []ViewToken
}

// ChangedFunc receives viewability notifications. It is invoked only
// when the change list is non-empty.
type ChangedFunc func(Changed)

// Range bounds a scan to the indices actually rendered.
type Range struct {
	// First is the first rendered index (inclusive).
	First int

	// Last is the last rendered index (inclusive).
	Last int
}
