// Package advisor assembles Carlo chat requests: it renders the user's
// profile and selected records into bounded natural-language context
// blocks and orchestrates the exchange with the generation API.
package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yonderlust/yonderlust/app/models"
)

// Placeholders keep line shapes predictable when optional fields are
// absent, both for humans reading the prompt and for the generator.
const (
	placeholderNoCategory = "uncategorized"
	placeholderNoWeight   = "no weight"
	placeholderNoActivity = "general"
	placeholderNoDates    = "no dates set"
	placeholderNoNotes    = "(no additional details)"
	placeholderNoType     = "unknown"
)

const tripDateLayout = "2006-01-02"

// UserStore is the user slice the assembler reads (the AI-context note).
type UserStore interface {
	GetByID(id string) (*models.User, error)
}

// ActivityStore covers the global catalog and the user's opted-in set.
type ActivityStore interface {
	ListByIDs(ids []uint) ([]models.Activity, error)
	ListUserActivities(userID string) ([]models.UserActivity, error)
}

// ItemStore fetches owned items by ID, ordered by name.
type ItemStore interface {
	ListOwnedByIDs(userID string, ids []uint) ([]models.Item, error)
}

// TripStore fetches owned trips with their item lists preloaded.
type TripStore interface {
	ListOwnedByIDs(userID string, ids []uint) ([]models.Trip, error)
}

// Assembler builds the Carlo system prompt from stored profile data and a
// per-request selection. Rendering is deterministic for a fixed snapshot:
// all queries use stable ordering and missing fields render as fixed
// placeholders.
type Assembler struct {
	users      UserStore
	activities ActivityStore
	items      ItemStore
	trips      TripStore
}

// NewAssembler wires the assembler to its data sources.
func NewAssembler(users UserStore, activities ActivityStore, items ItemStore, trips TripStore) *Assembler {
	return &Assembler{users: users, activities: activities, items: items, trips: trips}
}

// BuildPrompt renders the complete system prompt for one exchange.
func (a *Assembler) BuildPrompt(userID string, sel Selection) (string, error) {
	profileContext, err := a.ProfileContext(userID)
	if err != nil {
		return "", err
	}
	selectedContext, err := a.SelectedContext(userID, sel)
	if err != nil {
		return "", err
	}
	return BuildSystemPrompt(profileContext, selectedContext), nil
}

// ProfileContext renders the persistent profile block: the user's opted-in
// activities with notes, plus the free-text AI-context note. Returns ""
// when both are empty, which omits the block entirely.
func (a *Assembler) ProfileContext(userID string) (string, error) {
	var parts []string

	entries, err := a.activities.ListUserActivities(userID)
	if err != nil {
		return "", err
	}
	if len(entries) > 0 {
		var b strings.Builder
		b.WriteString("USER'S ACTIVITIES & PREFERENCES:\n")
		wrote := false
		for _, ua := range entries {
			if ua.Activity == nil || ua.Activity.Name == "" {
				continue
			}
			if note := strings.TrimSpace(ua.Notes); note != "" {
				fmt.Fprintf(&b, "- %s: \"%s\"\n", ua.Activity.Name, note)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", ua.Activity.Name, placeholderNoNotes)
			}
			wrote = true
		}
		if wrote {
			parts = append(parts, b.String())
		}
	}

	user, err := a.users.GetByID(userID)
	if err == nil && user != nil {
		if note := strings.TrimSpace(user.AIContext); note != "" {
			parts = append(parts, fmt.Sprintf("ADDITIONAL USER CONTEXT:\n\"%s\"", note))
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// SelectedContext renders the per-request block for the selection set.
// An empty selection issues no queries and returns "". Every item/trip
// query is owner-scoped, so foreign IDs silently contribute nothing; only
// the activity catalog is global.
func (a *Assembler) SelectedContext(userID string, sel Selection) (string, error) {
	if sel.IsEmpty() {
		return "", nil
	}

	var parts []string

	if len(sel.GearIDs) > 0 {
		items, err := a.items.ListOwnedByIDs(userID, sel.GearIDs)
		if err != nil {
			return "", err
		}
		if block := renderItems("USER'S GEAR INVENTORY:", items, false); block != "" {
			parts = append(parts, block)
		}
	}

	if len(sel.FoodIDs) > 0 {
		items, err := a.items.ListOwnedByIDs(userID, sel.FoodIDs)
		if err != nil {
			return "", err
		}
		if block := renderItems("USER'S FOOD INVENTORY:", items, true); block != "" {
			parts = append(parts, block)
		}
	}

	if len(sel.TripIDs) > 0 {
		trips, err := a.trips.ListOwnedByIDs(userID, sel.TripIDs)
		if err != nil {
			return "", err
		}
		if block := renderTrips(trips); block != "" {
			parts = append(parts, block)
		}
	}

	if len(sel.ActivityIDs) > 0 {
		activities, err := a.activities.ListByIDs(sel.ActivityIDs)
		if err != nil {
			return "", err
		}
		if block := renderActivities(activities); block != "" {
			parts = append(parts, block)
		}
	}

	return strings.Join(parts, "\n"), nil
}

func renderItems(header string, items []models.Item, withCalories bool) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, item := range items {
		brand := ""
		if item.Brand != "" {
			brand = fmt.Sprintf(" (%s)", item.Brand)
		}
		calories := ""
		if withCalories && item.Calories != nil {
			calories = fmt.Sprintf(", %d cal", *item.Calories)
		}
		fmt.Fprintf(&b, "- %s%s: %s, %s%s\n",
			item.Name, brand, categoryName(item.Category), itemWeight(&item), calories)
	}
	return b.String()
}

func renderTrips(trips []models.Trip) string {
	if len(trips) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("SELECTED TRIPS:\n")
	for _, trip := range trips {
		activity := placeholderNoActivity
		if trip.Activity != nil && trip.Activity.Name != "" {
			activity = trip.Activity.Name
		}
		fmt.Fprintf(&b, "\n%s (%s, %s):\n", trip.Name, activity, tripDates(&trip))

		if trip.Notes != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", trip.Notes)
		}
		if trip.WaterVolume != nil {
			unit := trip.WaterUnit
			if unit == "" {
				unit = models.DefaultWaterUnit
			}
			fmt.Fprintf(&b, "  Water: %s %s\n", formatAmount(*trip.WaterVolume), unit)
		}

		if len(trip.TripItems) > 0 {
			b.WriteString("  Items:\n")
			for _, ti := range trip.TripItems {
				if ti.Item == nil {
					continue
				}
				itemType := placeholderNoType
				if ti.Item.ItemType != nil && ti.Item.ItemType.Name != "" {
					itemType = ti.Item.ItemType.Name
				}
				qty := ""
				if ti.Quantity > 1 {
					qty = fmt.Sprintf(" x%d", ti.Quantity)
				}
				fmt.Fprintf(&b, "    - %s%s: %s, %s%s\n",
					ti.Item.Name, qty, itemType, itemWeight(ti.Item), tripItemFlags(ti))
			}
		}
	}
	return b.String()
}

func renderActivities(activities []models.Activity) string {
	if len(activities) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("ACTIVITY FOCUS:\n")
	for _, act := range activities {
		b.WriteString("- ")
		b.WriteString(act.Name)
		if act.Description != "" {
			b.WriteString(": ")
			b.WriteString(act.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func categoryName(c *models.Category) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	return placeholderNoCategory
}

func itemWeight(item *models.Item) string {
	if item.Weight == nil {
		return placeholderNoWeight
	}
	unit := item.WeightUnit
	if unit == "" {
		unit = models.DefaultWeightUnit
	}
	return fmt.Sprintf("%s %s", formatAmount(*item.Weight), unit)
}

func tripDates(trip *models.Trip) string {
	if trip.StartDate == nil {
		return placeholderNoDates
	}
	dates := trip.StartDate.Format(tripDateLayout)
	if trip.EndDate != nil {
		dates += " to " + trip.EndDate.Format(tripDateLayout)
	}
	return dates
}

func tripItemFlags(ti models.TripItem) string {
	var flags []string
	if ti.IsWorn {
		flags = append(flags, "worn")
	}
	if ti.IsConsumable {
		flags = append(flags, "consumable")
	}
	if len(flags) == 0 {
		return ""
	}
	return fmt.Sprintf(" [%s]", strings.Join(flags, ", "))
}

// formatAmount trims trailing zeros so 2.50 renders as "2.5" and 3.00 as
// "3", matching how the amounts were entered.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
