package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PayloadKind tags the TransferPayload variant.
type PayloadKind string

const (
	PayloadKindSingleOwner PayloadKind = "single_owner"
	PayloadKindSubdivision PayloadKind = "subdivision"
)

// TransferPayload is the structured replacement for the legacy practice of
// encoding the heir list inside free-text notes. It is the source of truth for
// new transactions; the human-readable heir lines in Notes are derived display
// text only.
//
// Kind single_owner: CitizenID set, Heirs empty.
// Kind subdivision: Heirs holds the ordered beneficiary citizen IDs.
type TransferPayload struct {
	Kind      PayloadKind `json:"kind"`
	CitizenID int64       `json:"citizen_id,omitempty"`
	Heirs     []int64     `json:"heirs,omitempty"`
}

// SingleOwnerPayload builds the simple-transfer variant.
func SingleOwnerPayload(citizenID int64) *TransferPayload {
	return &TransferPayload{Kind: PayloadKindSingleOwner, CitizenID: citizenID}
}

// SubdivisionPayload builds the inheritance-with-division variant. The heir
// order is significant: it determines the letter suffix of each new parcel.
func SubdivisionPayload(heirs []int64) *TransferPayload {
	return &TransferPayload{Kind: PayloadKindSubdivision, Heirs: append([]int64(nil), heirs...)}
}

// Validate checks internal consistency of the variant.
func (p *TransferPayload) Validate() error {
	switch p.Kind {
	case PayloadKindSingleOwner:
		if p.CitizenID <= 0 {
			return errors.New("single owner payload requires a citizen id")
		}
		if len(p.Heirs) > 0 {
			return errors.New("single owner payload must not carry heirs")
		}
	case PayloadKindSubdivision:
		if len(p.Heirs) == 0 {
			return errors.New("subdivision payload requires at least one heir")
		}
		for _, heir := range p.Heirs {
			if heir <= 0 {
				return fmt.Errorf("invalid heir citizen id: %d", heir)
			}
		}
	default:
		return errors.New("unknown payload kind: " + string(p.Kind))
	}
	return nil
}

// MarshalPayload serializes a payload for the JSONB column. Nil payloads map
// to SQL NULL so legacy rows stay distinguishable.
func MarshalPayload(p *TransferPayload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// UnmarshalPayload reverses MarshalPayload.
func UnmarshalPayload(raw []byte) (*TransferPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var p TransferPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode transfer payload: %w", err)
	}
	return &p, nil
}

func containsMarker(notes string) bool {
	return strings.Contains(notes, DivisionMarker)
}
