// Package parcelnum derives and decodes human-readable parcel numbers of the
// form REGIONCODE-YEAR-SEQ4, e.g. "SL-2024-1547".
package parcelnum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// regionCodes maps known region display names (lowercased) to their two-letter
// code. Accented and unaccented spellings are both accepted.
var regionCodes = map[string]string{
	"dakar":       "DK",
	"diourbel":    "DB",
	"fatick":      "FK",
	"kaffrine":    "KF",
	"kaolack":     "KL",
	"kedougou":    "KD",
	"kédougou":    "KD",
	"kolda":       "KO",
	"louga":       "LG",
	"matam":       "MT",
	"saint-louis": "SL",
	"saint louis": "SL",
	"sedhiou":     "SE",
	"sédhiou":     "SE",
	"tambacounda": "TC",
	"thies":       "TH",
	"thiès":       "TH",
	"ziguinchor":  "ZG",
}

// regionNames is the reverse lookup, code to canonical display name.
var regionNames = map[string]string{
	"DK": "Dakar",
	"DB": "Diourbel",
	"FK": "Fatick",
	"KF": "Kaffrine",
	"KL": "Kaolack",
	"KD": "Kédougou",
	"KO": "Kolda",
	"LG": "Louga",
	"MT": "Matam",
	"SL": "Saint-Louis",
	"SE": "Sédhiou",
	"TC": "Tambacounda",
	"TH": "Thiès",
	"ZG": "Ziguinchor",
}

var numberPattern = regexp.MustCompile(`^[A-Z]{2}-\d{4}-\d{4}$`)

// CodeForRegion maps a region display name to its two-letter code.
// Unknown regions fall back to the first two letters, uppercased.
func CodeForRegion(region string) string {
	trimmed := strings.TrimSpace(region)
	if code, ok := regionCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	runes := []rune(strings.ToUpper(trimmed))
	if len(runes) >= 2 {
		return string(runes[:2])
	}
	return string(runes)
}

// RegionName returns the canonical display name for a region code, or the
// code itself when unknown.
func RegionName(code string) string {
	if name, ok := regionNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// Format renders CODE-YEAR-NNNN with the sequence zero-padded to 4 digits.
func Format(code string, year int, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", code, year, seq)
}

// Valid reports whether a number matches the CODE-YEAR-SEQ4 shape.
func Valid(number string) bool {
	return numberPattern.MatchString(number)
}

// Parse extracts region code, year, and sequence from a well-formed number.
func Parse(number string) (code string, year int, seq int, err error) {
	if !Valid(number) {
		return "", 0, 0, fmt.Errorf("malformed parcel number: %q", number)
	}
	parts := strings.SplitN(number, "-", 3)
	year, _ = strconv.Atoi(parts[1])
	seq, _ = strconv.Atoi(parts[2])
	return parts[0], year, seq, nil
}

// NextFromScan computes the next sequence for a code/year pair by scanning
// existing parcel numbers: one more than the highest matching suffix, starting
// at 1 when nothing matches. Malformed numbers are silently skipped.
//
// This is the legacy allocation strategy; it races under concurrent approvals
// and survives only for migration and counter backfill. New allocations go
// through the sequence store's atomic counter.
func NextFromScan(existing []string, code string, year int) int {
	prefix := fmt.Sprintf("%s-%04d-", code, year)
	max := 0
	for _, number := range existing {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		seq, err := strconv.Atoi(number[len(prefix):])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max + 1
}

// SubdivisionSuffix returns the letter suffix for the i-th heir parcel
// (0 -> "A", 1 -> "B", ...).
func SubdivisionSuffix(i int) string {
	return string(rune('A' + i))
}
