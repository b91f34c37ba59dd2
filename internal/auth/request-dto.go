package auth

// token exchange request payload
type TokenRequest struct {
	APIToken string `json:"api_token" validate:"required"`
	Subject  string `json:"subject" validate:"omitempty,min=2,max=100"`
}
