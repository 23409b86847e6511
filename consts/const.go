package consts

// Generic codes
const (
	CodeSuccess = 0 // success
)

// Client errors (1xxxx)
const (
	CodeParamError       = 10001 // parameter validation failed
	CodeResourceNotFound = 10003 // resource does not exist
	CodeTooManyRequests  = 10005 // too many requests
)

// Authorization errors (2xxxx)
const (
	CodeAuthStateExpired   = 20001 // unknown or expired OAuth state
	CodeAuthExchangeFailed = 20002 // code exchange rejected by VK
	CodeAuthDenied         = 20003 // user declined access on the VK page
)

// Server errors (3xxxx)
const (
	CodeInternalError      = 30001 // internal error
	CodeServiceUnavailable = 30002 // service unavailable
	CodeTimeoutError       = 30003 // request timed out
)

// CodeMessage maps codes to their default message.
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	CodeParamError:       "invalid parameters",
	CodeResourceNotFound: "resource not found",
	CodeTooManyRequests:  "too many requests",

	CodeAuthStateExpired:   "authorization link expired, request a new one in the bot",
	CodeAuthExchangeFailed: "authorization failed",
	CodeAuthDenied:         "access was not granted",

	CodeInternalError:      "internal error",
	CodeServiceUnavailable: "service unavailable",
	CodeTimeoutError:       "request timed out",
}

// GetMessage returns the default message of code.
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}
