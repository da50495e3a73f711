package domain

import "time"

// AssetStatus enumerates lifecycle states for hardware and software assets.
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "ACTIVE"
	AssetStatusInRepair AssetStatus = "IN_REPAIR"
	AssetStatusRetired  AssetStatus = "RETIRED"
)

// Valid reports whether the status is known.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusActive, AssetStatusInRepair, AssetStatusRetired:
		return true
	}
	return false
}

// Asset is a tracked piece of equipment or license.
type Asset struct {
	ID           string
	OwnerID      string
	AssigneeID   *string
	Name         string
	AssetTag     string
	SerialNumber string
	Location     string
	Status       AssetStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resource returns the authorization view given the owner's current role.
func (a *Asset) Resource(ownerRole Role) Resource {
	return Resource{
		Kind:       KindAsset,
		ID:         a.ID,
		Owner:      Actor{ID: a.OwnerID, Role: ownerRole},
		AssigneeID: a.AssigneeID,
		Status:     string(a.Status),
	}
}
