package service

import "strings"

// professorMatches applies the reconciliation rules between a stored
// professor id and the canonical target. Rules are ordered and the first
// match wins: exact equality, case-insensitive equality, then
// case-insensitive substring containment in either direction. The exact
// flag distinguishes matches that require no normalization from those that
// should trigger a persisted rewrite of the stored value.
func professorMatches(stored, target string) (exact, ok bool) {
	if stored == target {
		return true, true
	}

	if stored == "" || target == "" {
		return false, false
	}

	storedLower := strings.ToLower(stored)
	targetLower := strings.ToLower(target)

	if storedLower == targetLower {
		return false, true
	}

	if strings.Contains(storedLower, targetLower) || strings.Contains(targetLower, storedLower) {
		return false, true
	}

	return false, false
}
