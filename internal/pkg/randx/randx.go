/*
Package randx provides functions for generating cryptographically secure random numbers and unique identifiers.

It is primarily used to generate fixed-length numeric one-time codes, Base62 encoded
resend tokens, and standard UUID verification IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// Digits is the character set for numeric one-time codes.
	Digits = "0123456789"

	// OTPCodeLength is the fixed length of a dispatched one-time code.
	OTPCodeLength = 6

	// ResendTokenLength is the fixed length of the Base62 resend token.
	ResendTokenLength = 32
)

// OTPCode generates a numeric one-time code of OTPCodeLength digits using a
// cryptographically secure random number generator (crypto/rand).
func OTPCode() (string, error) {
	result := make([]byte, OTPCodeLength)

	for i := range OTPCodeLength {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit for one-time code: %v", err)
		}

		result[i] = Digits[num.Int64()]
	}

	return string(result), nil
}

// ResendToken generates a Base62 encoded token of ResendTokenLength characters
// used to re-trigger SMS delivery for an existing verification attempt.
func ResendToken() (string, error) {
	result := make([]byte, ResendTokenLength)

	for i := range ResendTokenLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random character for resend token: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// VerificationID generates a standard UUID v4 string identifying one code dispatch.
func VerificationID() string {
	return uuid.New().String()
}

// IsValidOTPCode checks if the given string is a well-formed one-time code.
// Validity criteria include: length equals OTPCodeLength and all characters are digits.
func IsValidOTPCode(code string) bool {
	if len(code) != OTPCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(Digits, char) {
			return false
		}
	}

	return true
}
