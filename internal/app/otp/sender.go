/*
Package otp implements the verification provider.

This file declares the Sender abstraction over the actual SMS transport and a
logging implementation for development, where codes are written to the log
instead of being delivered.
*/
package otp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Sender delivers a one-time code to a phone number out-of-band.
type Sender interface {
	SendCode(ctx context.Context, phoneNumber, code string) error
}

// LogSender writes codes to the structured log instead of sending SMS.
// Development only.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender builds a logging sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "LogSender").Logger()}
}

// SendCode logs the code at warn level so it cannot be missed in development output.
func (s *LogSender) SendCode(_ context.Context, phoneNumber, code string) error {
	s.logger.Warn().
		Str("phone_number", phoneNumber).
		Str("code", code).
		Msg("SMS delivery disabled; one-time code logged instead.")
	return nil
}

// MessageBody formats the SMS text for a one-time code.
func MessageBody(code string) string {
	return fmt.Sprintf("Your Chatterbox verification code is %s. It expires in a few minutes.", code)
}
