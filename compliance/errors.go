/*
errors.go - Sentinel errors for the engine's boundary

PURPOSE:
  The engine itself is total: duplicate mark-complete calls, undo of a
  missing tuple, and unparseable years are all absorbed as no-ops or
  classification states, never errors. Errors exist only at the boundary -
  stores that cannot find a record, handlers fed invalid identifiers.

USAGE:
  if errors.Is(err, compliance.ErrSiteNotFound) { ... }
*/
package compliance

import "errors"

var (
	// ErrSiteNotFound is returned by stores and handlers for an unknown site ID.
	ErrSiteNotFound = errors.New("site not found")

	// ErrAssetNotFound is returned for an unknown asset ID.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEntryNotFound is returned for an unknown out-list entry ID.
	ErrEntryNotFound = errors.New("out entry not found")

	// ErrDuplicateID is returned when registering a site or asset whose ID
	// already exists.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidYear is returned by ServiceAsset for a non-positive year.
	// Note the asymmetry with due-state calculation, which never errors on
	// bad years - writes are validated, reads degrade.
	ErrInvalidYear = errors.New("invalid service year")
)
