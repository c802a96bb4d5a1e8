package advisor

// Selection is the per-request set of record IDs a user opts to expose to
// Carlo. It is scoped to a single exchange and never persisted.
type Selection struct {
	GearIDs     []uint `json:"gear_ids"`
	FoodIDs     []uint `json:"food_ids"`
	TripIDs     []uint `json:"trip_ids"`
	ActivityIDs []uint `json:"activity_ids"`
}

// IsEmpty reports whether no category has any selected IDs. An empty
// selection skips the selected-context queries entirely.
func (s Selection) IsEmpty() bool {
	return len(s.GearIDs) == 0 && len(s.FoodIDs) == 0 && len(s.TripIDs) == 0 && len(s.ActivityIDs) == 0
}
