// Package audit implements the edit-type classifier (C7): a pure heuristic
// that labels an incremental update as insert, delete, update, or format by
// comparing before/after text samples of the edited document fragment.
package audit
