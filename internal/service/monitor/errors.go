package monitor

import "errors"

// Sentinel errors for the monitor service layer.
var (
	// ErrSnapshotNotFound means a deal has no persisted snapshot yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrDealNotFound means the CRM has no deal with the requested id.
	ErrDealNotFound = errors.New("deal not found")
)
