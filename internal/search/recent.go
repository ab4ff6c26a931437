package search

// PushRecent front-inserts term into terms, removing any earlier exact
// duplicate and truncating to limit.
func PushRecent(terms []string, term string, limit int) []string {
	if limit <= 0 {
		limit = 5
	}
	updated := make([]string, 0, len(terms)+1)
	updated = append(updated, term)
	for _, t := range terms {
		if t != term {
			updated = append(updated, t)
		}
	}
	if len(updated) > limit {
		updated = updated[:limit]
	}
	return updated
}
