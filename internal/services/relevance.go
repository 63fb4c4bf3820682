package services

import "github.com/vistara-apps/healthsync/internal/models"

// FilterByConditions returns the ordered subsequence of catalog visible to a
// user with the given selected conditions. An item passes when its relevance
// set is empty (universally relevant) or overlaps the selection. With no
// selected conditions only universal items pass. Source order is preserved;
// an empty result is valid output. The function is total and side-effect
// free, so it is re-run on every catalog or selection change instead of
// being cached.
func FilterByConditions(catalog []models.Content, selected []string) []models.Content {
	set := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}

	visible := make([]models.Content, 0, len(catalog))
	for _, item := range catalog {
		if conditionsOverlap(item.RelevantConditions, set) {
			visible = append(visible, item)
		}
	}
	return visible
}

func conditionsOverlap(relevant []string, selected map[string]struct{}) bool {
	if len(relevant) == 0 {
		return true
	}
	for _, id := range relevant {
		if _, ok := selected[id]; ok {
			return true
		}
	}
	return false
}

// CanAccess is the subscription gate: access is allowed unless the item is
// premium and the user is on the free tier. The gate governs access only;
// visibility is the relevance filter's job, and premium items a free user can
// see are shown locked rather than hidden.
func CanAccess(status models.SubscriptionStatus, isPremium bool) bool {
	return !isPremium || status == models.SubscriptionPremium
}
