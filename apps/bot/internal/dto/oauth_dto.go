package dto

// CallbackRequest is the query VK ID appends to the redirect URI.
type CallbackRequest struct {
	Code     string `form:"code" binding:"required"`
	State    string `form:"state" binding:"required"`
	DeviceID string `form:"device_id"`

	// Error and ErrorDescription are set instead of Code when the user declined.
	Error            string `form:"error"`
	ErrorDescription string `form:"error_description"`
}

// CallbackResponse is returned after the token was stored.
type CallbackResponse struct {
	UserID int64 `json:"user_id"`
}
