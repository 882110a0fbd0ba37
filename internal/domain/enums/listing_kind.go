package enums

// ListingKind distinguishes property listings from roommate profiles; both
// live in the same catalog and share ids, rent and moderation status.
type ListingKind string

const (
	ListingKindProperty ListingKind = "property"
	ListingKindRoommate ListingKind = "roommate"
)

func (k ListingKind) Valid() bool {
	switch k {
	case ListingKindProperty, ListingKindRoommate:
		return true
	default:
		return false
	}
}
