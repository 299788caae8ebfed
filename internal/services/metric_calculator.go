package services

// Derived-metric formulas shared by per-record ingestion and per-bucket
// aggregation. Aggregation feeds them summed inputs, never averages of
// already-derived values.

// OccupancyRate returns occupied/available*100, or nil when there are no
// available rooms. nil means "not meaningful", which is distinct from a
// true 0% occupancy.
func OccupancyRate(occupied, available int) *float64 {
	if available <= 0 {
		return nil
	}
	rate := float64(occupied) / float64(available) * 100
	return &rate
}

// ADR returns revenue per occupied room, 0 when nothing was occupied.
func ADR(revenue float64, occupied int) float64 {
	if occupied <= 0 {
		return 0
	}
	return revenue / float64(occupied)
}

// RevPAR returns revenue per available room, 0 when none were available.
func RevPAR(revenue float64, available int) float64 {
	if available <= 0 {
		return 0
	}
	return revenue / float64(available)
}
