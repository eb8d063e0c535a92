package resolve

import "github.com/bastiangx/jamofind/pkg/fuzzy"

// BestMatch picks the catalog entry whose name is closest to id.Name, for joining
// against an external listing that spells complex names its own way. Candidates
// should already be narrowed to the same legal-dong code. ok is false when there
// are none.
func BestMatch(id ApartmentID, candidates []string) (fuzzy.Match, bool) {
	return fuzzy.Closest(id.Name, candidates)
}

// RankByName reorders ids so the names closest to aptName by jamo distance
// come first. Equal distances keep their order in ids. An empty aptName
// returns ids as they are.
func RankByName(ids []ApartmentID, aptName string) []ApartmentID {
	if aptName == "" || len(ids) < 2 {
		return ids
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}

	ranked := make([]ApartmentID, 0, len(ids))
	for _, m := range fuzzy.NewMatcher(names).Rank(aptName) {
		ranked = append(ranked, ids[m.Index])
	}
	return ranked
}
