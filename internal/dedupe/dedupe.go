package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent resolution triggers. A night may be resolved by the last
// submitter, the deadline scanner or a resignation at the same instant;
// routing all of them through one singleflight.Group per concern makes sure
// exactly one resolution runs and the others wait for its result.

import "golang.org/x/sync/singleflight"

// ResolveGroup deduplicates night resolutions keyed by keys.ResolveKey
// (match ID plus night number).
var ResolveGroup singleflight.Group

// SelectionGroup deduplicates completion of a pending item selection keyed
// by keys.SelectionKey. The killer's pick and the selection-timeout scanner
// can race; only one of them may hand out the item.
var SelectionGroup singleflight.Group
