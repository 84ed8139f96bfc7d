package models

import "time"

// ParcelStatus is the constrained status set for parcels. There is
// deliberately no "subdivided" member: a subdivided original keeps its status
// and carries a note instead (see the approval service).
type ParcelStatus string

const (
	ParcelStatusAvailable     ParcelStatus = "available"
	ParcelStatusOccupied      ParcelStatus = "occupied"
	ParcelStatusInTransaction ParcelStatus = "in_transaction"
	ParcelStatusInDispute     ParcelStatus = "in_dispute"
	ParcelStatusReserved      ParcelStatus = "reserved"
)

// AreaUnit qualifies a parcel's numeric area.
type AreaUnit string

const (
	AreaUnitSquareMeters AreaUnit = "square_meters"
	AreaUnitHectares     AreaUnit = "hectares"
)

// LandType categorizes parcel use.
type LandType string

const (
	LandTypeResidential  LandType = "residential"
	LandTypeAgricultural LandType = "agricultural"
	LandTypeCommercial   LandType = "commercial"
	LandTypeIndustrial   LandType = "industrial"
)

// Parcel is a unit of land with a unique human-readable number, an area, and a
// current owner. OwnerID zero means unowned. Notes is an append-only log of
// human annotations; it is never parsed as data for parcels.
type Parcel struct {
	ID             int64
	Number         string
	LandTitle      *string
	Area           float64
	AreaUnit       AreaUnit
	LandType       LandType
	Usage          string
	Address        string
	Region         string
	Department     string
	Commune        string
	GPS            *string
	Status         ParcelStatus
	EstimatedValue *float64
	OwnerID        int64
	AcquiredAt     *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate enforces the parcel invariants checked before any insert.
func (p *Parcel) Validate() error {
	if p.Number == "" {
		return errRequired("parcel number")
	}
	if p.Area <= 0 {
		return errRequired("positive area")
	}
	if p.Status == "" {
		return errRequired("parcel status")
	}
	return nil
}
