// Package types holds the data model shared across syncd: principals,
// vaults and their membership relations, documents and their metadata,
// edit-audit records, and the effective-capability enum the role resolver
// produces.
package types
