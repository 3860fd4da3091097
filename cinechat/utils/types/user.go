// cinechat/utils/types/user.go
package types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is what the client keeps after a successful login. Token is
// opaque: the issuer mints it, the client only stores and replays it.
type Identity struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
