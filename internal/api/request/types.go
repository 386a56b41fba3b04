package request

// CreateGuestRequest is the request body for creating a guest identity
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGameRequest is the request body for creating a game. The body is
// optional; the creator becomes the host either way.
type CreateGameRequest struct {
	DisplayName string `json:"display_name"`
}

// JoinGameRequest is the request body for joining a game
type JoinGameRequest struct {
	DisplayName string `json:"display_name"`
}
