package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrTeacherNotFound ErrCode = "TEACHER_NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Allocation rules ──────────────────────────────────────────────
	// These mirror model.AllocationReason one-to-one so a rejection's reason
	// code survives unchanged from the engine to the wire.
	ErrAlreadyAssigned   ErrCode = "ALREADY_ASSIGNED"
	ErrSessionFull       ErrCode = "SESSION_FULL"
	ErrSubjectConflict   ErrCode = "SUBJECT_CONFLICT"
	ErrTimeConflict      ErrCode = "TIME_CONFLICT"
	ErrQuotaReached      ErrCode = "QUOTA_REACHED"
	ErrNothingToCancel   ErrCode = "NOTHING_TO_CANCEL"
	ErrTransientConflict ErrCode = "TRANSIENT_CONFLICT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid login or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrTeacherAccessOnly:
		return "This resource is restricted to teachers."
	case ErrAdminAccessOnly:
		return "This resource is restricted to planners."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrTeacherNotFound:
		return "Teacher not found."
	case ErrSessionNotFound:
		return "Session not found."

	// ─── Allocation rules ──────────────────────────────────────────────
	case ErrAlreadyAssigned:
		return "This teacher is already assigned to this session."
	case ErrSessionFull:
		return "This session already has its required number of supervisors."
	case ErrSubjectConflict:
		return "Teachers cannot supervise sessions covering their own subjects."
	case ErrTimeConflict:
		return "This session overlaps another assignment on the same day."
	case ErrQuotaReached:
		return "The supervision quota for this teacher has been reached."
	case ErrNothingToCancel:
		return "There is no wish to cancel for this session."
	case ErrTransientConflict:
		return "The session is being updated concurrently. Please retry."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
