package keys

import "fmt"

// ResolveKey produces the dedupe key for resolving one night of one match.
// Including the night number means a stale caller racing a fresh one can
// never join the wrong resolution.
func ResolveKey(matchID uint, night int) string {
	return fmt.Sprintf("resolve:%d:%d", matchID, night)
}

// SelectionKey produces the dedupe key for completing a match's pending
// item selection. At most one selection is open per match, so the match ID
// alone is canonical.
func SelectionKey(matchID uint) string {
	return fmt.Sprintf("selection:%d", matchID)
}
