package catalog

import "strings"

// Allotment is the decoded ownership history of an asset. The stored form
// is a single delimited string, forward or backward slashes, last segment
// being the holder it is currently alloted to.
type Allotment struct {
	Current  string
	Previous []string
}

func splitHolders(history string) []string {
	parts := strings.FieldsFunc(history, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	holders := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			holders = append(holders, trimmed)
		}
	}
	return holders
}

// ParseAllotment decodes a stored history string. Previous holders are
// returned most recently displaced first, the reverse of the stored
// chronological order. An empty or delimiter-only string yields a zero
// Allotment.
func ParseAllotment(history string) Allotment {
	holders := splitHolders(history)
	if len(holders) == 0 {
		return Allotment{}
	}
	previous := make([]string, 0, len(holders)-1)
	for i := len(holders) - 2; i >= 0; i-- {
		previous = append(previous, holders[i])
	}
	return Allotment{
		Current:  holders[len(holders)-1],
		Previous: previous,
	}
}

// Holders splits a delimited holder list without reordering it.
func Holders(list string) []string {
	return splitHolders(list)
}

// Displace pushes a displaced holder onto the front of a previous-holder
// list stored most recent first, deduplicating so a returning holder moves
// up instead of appearing twice.
func Displace(previous, displaced string) string {
	displaced = strings.TrimSpace(displaced)
	holders := splitHolders(previous)

	merged := make([]string, 0, len(holders)+1)
	seen := map[string]bool{}
	if displaced != "" {
		merged = append(merged, displaced)
		seen[displaced] = true
	}
	for _, holder := range holders {
		if !seen[holder] {
			merged = append(merged, holder)
			seen[holder] = true
		}
	}
	return strings.Join(merged, "/")
}

// Remove drops a holder from a delimited list, preserving the order of the
// remaining entries.
func Remove(list, holder string) string {
	holder = strings.TrimSpace(holder)
	holders := splitHolders(list)

	kept := make([]string, 0, len(holders))
	for _, h := range holders {
		if h != holder {
			kept = append(kept, h)
		}
	}
	return strings.Join(kept, "/")
}

// Reassign moves the asset to newHolder and returns the updated history
// string. The displaced holder is recorded first among the previous
// holders, duplicates are collapsed keeping the most recent displacement.
// Reassigning to the current holder is the identity.
func Reassign(history, newHolder string) string {
	newHolder = strings.TrimSpace(newHolder)
	if newHolder == "" {
		return history
	}

	allotment := ParseAllotment(history)
	if allotment.Current == newHolder {
		return history
	}

	previous := make([]string, 0, len(allotment.Previous)+1)
	seen := map[string]bool{newHolder: true}
	if allotment.Current != "" {
		previous = append(previous, allotment.Current)
		seen[allotment.Current] = true
	}
	for _, holder := range allotment.Previous {
		if !seen[holder] {
			previous = append(previous, holder)
			seen[holder] = true
		}
	}

	// Stored order is oldest first, so reverse the recency-ordered list
	// before appending the new current holder.
	segments := make([]string, 0, len(previous)+1)
	for i := len(previous) - 1; i >= 0; i-- {
		segments = append(segments, previous[i])
	}
	segments = append(segments, newHolder)
	return strings.Join(segments, "/")
}
