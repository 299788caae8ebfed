package constants

const (
	MsgBatchRejected      = "Batch failed validation"
	MsgMissingColumn      = "Required column missing"
	MsgInvalidDate        = "Invalid date format"
	MsgInvalidNumber      = "Invalid numeric value"
	MsgOccupiedOverTotal  = "Occupied rooms cannot exceed available rooms"
	MsgNegativeRevenue    = "Revenue cannot be negative"
	MsgMetricInconsistent = "RevPAR does not match ADR x occupancy"

	MsgTaskNotFound      = "Task not found"
	MsgTaskNotRetryable  = "Only failed tasks can be retried"
	MsgRetriesExhausted  = "Task has reached its retry cap"
	MsgProgressRegressed = "Task progress cannot decrease"
	MsgTaskTimedOut      = "Task exceeded processing timeout"

	MsgHotelNotFound = "Hotel record not found"
)
