package constants

// categoryPalette is ordered for visual distinction: consecutive
// categories get strongly contrasting hues rather than neighbors on the
// color wheel.
var categoryPalette = []string{
	"#EF4444", // red
	"#3B82F6", // blue
	"#22C55E", // green
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#14B8A6", // teal
	"#EC4899", // pink
	"#84CC16", // lime
	"#F97316", // orange
	"#06B6D4", // cyan
	"#A855F7", // purple
	"#EAB308", // yellow
}

// CategoryColor returns the palette color for the nth category a user
// creates. The palette wraps around once exhausted.
func CategoryColor(index int) string {
	if index < 0 {
		index = 0
	}
	return categoryPalette[index%len(categoryPalette)]
}
