package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for Chatterbox.
// It includes standard claims required by the JWT specification and the custom
// claims necessary for identifying the signed-in user.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable user identifier assigned at first sign-in.
	ID string `json:"id"`

	// Phone is the verified phone number the token was issued for, in E.164 format.
	Phone string `json:"phone"`
}
