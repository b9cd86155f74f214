package signup

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// CodeLength is the number of characters in an OTP.
const CodeLength = 5

// Each OTP character is drawn uniformly from 1-6, not 0-9.
const (
	minDigit = 1
	maxDigit = 6
)

// GenerateOTP returns a CodeLength string whose characters are drawn
// independently from '1'..'6'.
func GenerateOTP() (string, error) {
	var b strings.Builder
	span := big.NewInt(maxDigit - minDigit + 1)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + minDigit + n.Int64()))
	}
	return b.String(), nil
}

// OTPSubject is the subject line of the verification email.
const OTPSubject = "Authenticate your email"

// OTPBody renders the verification email for username.
func OTPBody(username, code string) string {
	return fmt.Sprintf("Hello %s,\n\n"+
		"Please use this OTP to authenticate your email: %s\n\n"+
		"Do not share the OTP anywhere, also keep in mind that we do not call or message our clients to share the OTP with us.\n\n"+
		"Warm Regards,\nDental Clinic", username, code)
}
