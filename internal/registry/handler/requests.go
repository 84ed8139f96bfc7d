package handler

import (
	"time"

	"foncier/internal/registry/models"
)

// CreateTransactionRequest is the JSON body for creating a transfer request.
// Heirs present on an inheritance makes it a subdivision; otherwise NewOwnerID
// names the single beneficiary.
type CreateTransactionRequest struct {
	ParcelID        int64    `json:"parcel_id"`
	Type            string   `json:"type"`
	PreviousOwnerID int64    `json:"previous_owner_id,omitempty"`
	NewOwnerID      int64    `json:"new_owner_id,omitempty"`
	Heirs           []int64  `json:"heirs,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	Fees            *float64 `json:"fees,omitempty"`
	Tax             *float64 `json:"tax,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func (r *CreateTransactionRequest) ToModel() *models.Transaction {
	transaction := &models.Transaction{
		ParcelID:        r.ParcelID,
		Type:            models.TransactionType(r.Type),
		PreviousOwnerID: r.PreviousOwnerID,
		NewOwnerID:      r.NewOwnerID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Fees:            r.Fees,
		Tax:             r.Tax,
		Notes:           r.Notes,
	}
	if len(r.Heirs) > 0 && transaction.Type == models.TransactionTypeInheritance {
		transaction.Payload = models.SubdivisionPayload(r.Heirs)
	} else if r.NewOwnerID > 0 {
		transaction.Payload = models.SingleOwnerPayload(r.NewOwnerID)
	}
	return transaction
}

// RejectTransactionRequest carries the agent's stated reason.
type RejectTransactionRequest struct {
	Reason string `json:"reason"`
}

// RegisterParcelRequest is the JSON body for registering a parcel. Number is
// optional; when absent one is allocated from the region/year sequence.
type RegisterParcelRequest struct {
	Number         string   `json:"number,omitempty"`
	LandTitle      *string  `json:"land_title,omitempty"`
	Area           float64  `json:"area"`
	AreaUnit       string   `json:"area_unit"`
	LandType       string   `json:"land_type,omitempty"`
	Usage          string   `json:"usage,omitempty"`
	Address        string   `json:"address,omitempty"`
	Region         string   `json:"region"`
	Department     string   `json:"department,omitempty"`
	Commune        string   `json:"commune,omitempty"`
	GPS            *string  `json:"gps,omitempty"`
	Status         string   `json:"status,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	OwnerID        int64    `json:"owner_id,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

func (r *RegisterParcelRequest) ToModel() *models.Parcel {
	return &models.Parcel{
		Number:         r.Number,
		LandTitle:      r.LandTitle,
		Area:           r.Area,
		AreaUnit:       models.AreaUnit(r.AreaUnit),
		LandType:       models.LandType(r.LandType),
		Usage:          r.Usage,
		Address:        r.Address,
		Region:         r.Region,
		Department:     r.Department,
		Commune:        r.Commune,
		GPS:            r.GPS,
		Status:         models.ParcelStatus(r.Status),
		EstimatedValue: r.EstimatedValue,
		OwnerID:        r.OwnerID,
		Notes:          r.Notes,
	}
}

// RegisterCitizenRequest is the JSON body for recording a citizen.
type RegisterCitizenRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

func (r *RegisterCitizenRequest) ToModel() *models.Citizen {
	return &models.Citizen{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		NationalID: r.NationalID,
		Address:    r.Address,
		Phone:      r.Phone,
		Email:      r.Email,
	}
}

// TransactionResponse is the JSON shape of a transaction.
type TransactionResponse struct {
	ID                int64      `json:"id"`
	ParcelID          int64      `json:"parcel_id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	PreviousOwnerID   int64      `json:"previous_owner_id,omitempty"`
	NewOwnerID        int64      `json:"new_owner_id,omitempty"`
	Heirs             []int64    `json:"heirs,omitempty"`
	Amount            *float64   `json:"amount,omitempty"`
	Currency          string     `json:"currency,omitempty"`
	Date              time.Time  `json:"date"`
	ValidatingAgentID *int64     `json:"validating_agent_id,omitempty"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

func TransactionFromModel(t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID,
		ParcelID:          t.ParcelID,
		Type:              string(t.Type),
		Status:            string(t.Status),
		PreviousOwnerID:   t.PreviousOwnerID,
		NewOwnerID:        t.NewOwnerID,
		Amount:            t.Amount,
		Currency:          t.Currency,
		Date:              t.Date,
		ValidatingAgentID: t.ValidatingAgentID,
		ValidatedAt:       t.ValidatedAt,
		Notes:             t.Notes,
	}
	if t.Payload != nil && t.Payload.Kind == models.PayloadKindSubdivision {
		resp.Heirs = t.Payload.Heirs
	}
	return resp
}

// ParcelResponse is the JSON shape of a parcel.
type ParcelResponse struct {
	ID             int64      `json:"id"`
	Number         string     `json:"number"`
	LandTitle      *string    `json:"land_title,omitempty"`
	Area           float64    `json:"area"`
	AreaUnit       string     `json:"area_unit"`
	LandType       string     `json:"land_type,omitempty"`
	Usage          string     `json:"usage,omitempty"`
	Address        string     `json:"address,omitempty"`
	Region         string     `json:"region,omitempty"`
	Department     string     `json:"department,omitempty"`
	Commune        string     `json:"commune,omitempty"`
	GPS            *string    `json:"gps,omitempty"`
	Status         string     `json:"status"`
	EstimatedValue *float64   `json:"estimated_value,omitempty"`
	OwnerID        int64      `json:"owner_id,omitempty"`
	AcquiredAt     *time.Time `json:"acquired_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

func ParcelFromModel(p *models.Parcel) ParcelResponse {
	return ParcelResponse{
		ID:             p.ID,
		Number:         p.Number,
		LandTitle:      p.LandTitle,
		Area:           p.Area,
		AreaUnit:       string(p.AreaUnit),
		LandType:       string(p.LandType),
		Usage:          p.Usage,
		Address:        p.Address,
		Region:         p.Region,
		Department:     p.Department,
		Commune:        p.Commune,
		GPS:            p.GPS,
		Status:         string(p.Status),
		EstimatedValue: p.EstimatedValue,
		OwnerID:        p.OwnerID,
		AcquiredAt:     p.AcquiredAt,
		Notes:          p.Notes,
	}
}

// CitizenResponse is the JSON shape of a citizen.
type CitizenResponse struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id,omitempty"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

func CitizenFromModel(c *models.Citizen) CitizenResponse {
	return CitizenResponse{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		NationalID: c.NationalID,
		Address:    c.Address,
		Phone:      c.Phone,
		Email:      c.Email,
	}
}
