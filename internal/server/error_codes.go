package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidHash     = 1004
	ErrCodeMissingRequired = 1005
	ErrCodeInvalidJWT      = 1006

	// Domain state (2xxx)
	ErrCodeHashNotFound = 2001
	ErrCodeBlobNotFound = 2002

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeUploadFailed   = 4003
	ErrCodeSponsorFailed  = 4004
	ErrCodeSignerFailed   = 4005
	ErrCodeNotImplemented = 4006
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeHashNotFound
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	default:
		return 0
	}
}
