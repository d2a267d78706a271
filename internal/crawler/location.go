package crawler

import "strings"

// FilterLocation keeps a raw location only when it names one of the target
// neighborhoods, suffixing the target area when the text lacks it. Any other
// location becomes Unavailable, which excludes the listing.
func FilterLocation(raw string, neighborhoods []string, targetArea string) string {
	if raw == Unavailable || !matchesNeighborhood(raw, neighborhoods) {
		return Unavailable
	}
	return EnsureAreaSuffix(raw, targetArea)
}

// EnsureAreaSuffix appends ", <targetArea>" unless the location already
// contains the area name. Unavailable is returned unchanged.
func EnsureAreaSuffix(location, targetArea string) string {
	if location == Unavailable || targetArea == "" || strings.Contains(location, targetArea) {
		return location
	}
	return location + ", " + targetArea
}

func matchesNeighborhood(location string, neighborhoods []string) bool {
	for _, n := range neighborhoods {
		if n != "" && strings.Contains(location, n) {
			return true
		}
	}
	return false
}
