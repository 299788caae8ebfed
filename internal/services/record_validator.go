package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/models/dtos"
)

const dateLayout = "2006-01-02"

// RecordValidator turns raw upload rows into typed records. The contract
// is all-or-nothing: any hard violation rejects the whole batch, so the
// pipeline never half-commits an upload.
type RecordValidator struct{}

func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// Validate checks the batch and returns the cleaned rows, or a
// ValidationError carrying every violation found. Rows whose key fields
// (hotel_name, date_recorded) are empty pass through with zero values; the
// ingestion pipeline drops them.
func (v *RecordValidator) Validate(batch []dtos.RawRecord) ([]dtos.CleanRecord, error) {
	var violations []common.FieldViolation

	violations = append(violations, checkColumnsPresent(batch)...)

	cleaned := make([]dtos.CleanRecord, 0, len(batch))

	for i, raw := range batch {
		row := dtos.CleanRecord{
			HotelName: strings.TrimSpace(raw.HotelName),
			Location:  strings.TrimSpace(raw.Location),
		}

		if d := strings.TrimSpace(raw.DateRecorded); d != "" {
			parsed, err := time.Parse(dateLayout, d)
			if err != nil {
				violations = append(violations, common.FieldViolation{
					Column:  "date_recorded",
					Rule:    "date",
					Message: fmt.Sprintf("row %d: %s (%q)", i, constants.MsgInvalidDate, d),
				})
			} else {
				row.DateRecorded = parsed
			}
		}

		row.RoomsAvailable = parseIntField(raw.RoomsAvailable, "rooms_available", i, &violations)
		row.RoomsOccupied = parseIntField(raw.RoomsOccupied, "rooms_occupied", i, &violations)
		row.Revenue = parseRevenue(raw.Revenue, i, &violations)

		// Reported derived columns are optional and advisory; a bad value
		// is simply ignored rather than rejecting the batch.
		row.ReportedOccupancyRate = parseOptionalFloat(raw.OccupancyRate)
		row.ReportedADR = parseOptionalFloat(raw.ADR)
		row.ReportedRevPAR = parseOptionalFloat(raw.RevPAR)

		if row.RoomsOccupied > row.RoomsAvailable {
			violations = append(violations, common.FieldViolation{
				Column:  "rooms_occupied",
				Rule:    "rooms_occupied <= rooms_available",
				Message: fmt.Sprintf("row %d: %s", i, constants.MsgOccupiedOverTotal),
			})
		}

		if row.Revenue < 0 {
			violations = append(violations, common.FieldViolation{
				Column:  "revenue",
				Rule:    "revenue >= 0",
				Message: fmt.Sprintf("row %d: %s", i, constants.MsgNegativeRevenue),
			})
		}

		cleaned = append(cleaned, row)
	}

	if len(violations) > 0 {
		return nil, &common.ValidationError{Violations: violations}
	}

	return cleaned, nil
}

// ConsistencyFlags runs the advisory cross-metric check on rows whose
// source sheet carried pre-computed derived columns: the reported revpar
// should be close to reported adr * occupancy/100 (tolerance 1% of adr).
// Flags mark the row for anomaly review but never block ingestion;
// hand-entered data trips this constantly. Keyed by row index so the
// pipeline can attach flags to the right stored record.
func (v *RecordValidator) ConsistencyFlags(rows []dtos.CleanRecord) map[int][]common.FieldViolation {
	flags := make(map[int][]common.FieldViolation)

	for i, row := range rows {
		if row.ReportedRevPAR == nil || row.ReportedADR == nil || row.ReportedOccupancyRate == nil {
			continue
		}

		expected := *row.ReportedADR * (*row.ReportedOccupancyRate) / 100
		tolerance := math.Abs(*row.ReportedADR) * 0.01

		if math.Abs(*row.ReportedRevPAR-expected) > tolerance {
			flags[i] = append(flags[i], common.FieldViolation{
				Column:  "revpar",
				Rule:    "revpar ~= adr * occupancy/100",
				Message: constants.MsgMetricInconsistent,
			})
		}
	}

	return flags
}

// checkColumnsPresent reports a column as missing only when no row in the
// batch carries a value for it, which is what a dropped spreadsheet column
// looks like after parsing.
func checkColumnsPresent(batch []dtos.RawRecord) []common.FieldViolation {
	if len(batch) == 0 {
		return nil
	}

	empties := map[string]int{}
	for _, raw := range batch {
		if strings.TrimSpace(raw.HotelName) == "" {
			empties["hotel_name"]++
		}
		if strings.TrimSpace(raw.DateRecorded) == "" {
			empties["date_recorded"]++
		}
		if strings.TrimSpace(raw.RoomsAvailable) == "" {
			empties["rooms_available"]++
		}
		if strings.TrimSpace(raw.RoomsOccupied) == "" {
			empties["rooms_occupied"]++
		}
		if strings.TrimSpace(raw.Revenue) == "" {
			empties["revenue"]++
		}
	}

	var violations []common.FieldViolation
	for _, col := range []string{"hotel_name", "date_recorded", "rooms_available", "rooms_occupied", "revenue"} {
		if empties[col] == len(batch) {
			violations = append(violations, common.FieldViolation{
				Column:  col,
				Rule:    "required",
				Message: constants.MsgMissingColumn,
			})
		}
	}
	return violations
}

func parseIntField(value, column string, row int, violations *[]common.FieldViolation) int {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*violations = append(*violations, common.FieldViolation{
			Column:  column,
			Rule:    "numeric",
			Message: fmt.Sprintf("row %d: %s (%q)", row, constants.MsgInvalidNumber, s),
		})
		return 0
	}
	if n < 0 {
		*violations = append(*violations, common.FieldViolation{
			Column:  column,
			Rule:    ">= 0",
			Message: fmt.Sprintf("row %d: %s must not be negative", row, column),
		})
	}
	return n
}

// parseRevenue goes through decimal so spreadsheet values like "8000.10"
// survive the round trip without binary float artifacts.
func parseRevenue(value string, row int, violations *[]common.FieldViolation) float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*violations = append(*violations, common.FieldViolation{
			Column:  "revenue",
			Rule:    "numeric",
			Message: fmt.Sprintf("row %d: %s (%q)", row, constants.MsgInvalidNumber, s),
		})
		return 0
	}
	f, _ := d.Float64()
	return f
}

func parseOptionalFloat(value string) *float64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}
