package audit

import "github.com/cuemby/syncd/pkg/types"

// formatOnlyThreshold is the update_size below which a before/after pair
// with no text sample on either side is classified as a formatting change
// rather than a content update.
const formatOnlyThreshold = 50

// Classify labels an edit by comparing optional before/after text samples
// and the raw update size. before and after are nil when no fragment
// named "prosemirror" was present in the document at that point in time.
func Classify(before, after *string, updateSize int) types.EditType {
	switch {
	case before != nil && after != nil:
		switch {
		case len(*after) > len(*before):
			return types.EditTypeInsert
		case len(*after) < len(*before):
			return types.EditTypeDelete
		case *before != *after:
			return types.EditTypeUpdate
		default:
			return types.EditTypeFormat
		}
	case before == nil && after != nil:
		return types.EditTypeInsert
	case before != nil && after == nil:
		return types.EditTypeDelete
	default: // both nil
		if updateSize < formatOnlyThreshold {
			return types.EditTypeFormat
		}
		return types.EditTypeUpdate
	}
}
