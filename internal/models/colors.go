package models

// CategoryColorMap maps AirNow category numbers to the page's color scheme tokens.
var CategoryColorMap = map[int]string{
	1: "good",
	2: "moderate",
	3: "unhealthy-sensitive",
	4: "unhealthy",
	5: "very-unhealthy",
	6: "hazardous",
}

// ColorFor returns the color token for a category, or "" when the number is unmapped.
func ColorFor(categoryNumber int) string {
	return CategoryColorMap[categoryNumber]
}
