/*
Package otp implements the verification provider.

This file defines the Provider, which ties code generation, the CodeStore, and
the SMS Sender together behind the verify.Provider interface. A dispatch
resolves to exactly one outcome: auto-verified (configured test numbers), code
sent, or a classified failure.
*/
package otp

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"chatterbox/internal/app/verify"
	"chatterbox/internal/pkg/logx"
	"chatterbox/internal/pkg/randx"
)

// e164Regex matches the E.164 phone-number format the provider accepts.
var e164Regex = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

const (
	// DefaultQuotaWindow is the window over which per-phone dispatches are counted.
	DefaultQuotaWindow = time.Hour

	// DefaultQuotaLimit is the maximum dispatches per phone per window.
	DefaultQuotaLimit = 5
)

// ProviderConfig configures the Provider.
type ProviderConfig struct {
	// TestNumbers are auto-verified: no SMS is sent and the dispatch resolves
	// straight to a pre-verified credential. Development and app review use.
	TestNumbers map[string]struct{}

	// QuotaWindow and QuotaLimit bound how many codes one phone number can
	// request. Zero values select the defaults.
	QuotaWindow time.Duration
	QuotaLimit  int64
}

// Provider implements verify.Provider: it generates codes, records them in
// the CodeStore, and hands them to the Sender for delivery.
type Provider struct {
	store       *CodeStore
	sender      Sender
	testNumbers map[string]struct{}
	quotaWindow time.Duration
	quotaLimit  int64
	logger      zerolog.Logger
}

// NewProvider constructs a Provider.
func NewProvider(store *CodeStore, sender Sender, cfg ProviderConfig) *Provider {
	window := cfg.QuotaWindow
	if window <= 0 {
		window = DefaultQuotaWindow
	}
	limit := cfg.QuotaLimit
	if limit <= 0 {
		limit = DefaultQuotaLimit
	}

	return &Provider{
		store:       store,
		sender:      sender,
		testNumbers: cfg.TestNumbers,
		quotaWindow: window,
		quotaLimit:  limit,
		logger:      logx.Logger().With().Str("component", "OTPProvider").Logger(),
	}
}

// Dispatch requests delivery of a one-time code to phoneNumber.
func (p *Provider) Dispatch(ctx context.Context, phoneNumber string) (*verify.Outcome, error) {
	if !e164Regex.MatchString(phoneNumber) {
		return nil, verify.NewVerificationError(verify.ReasonInvalidNumber, nil)
	}

	if _, ok := p.testNumbers[phoneNumber]; ok {
		p.logger.Info().Str("phone_number", phoneNumber).Msg("Test number auto-verified, skipping SMS dispatch.")
		return &verify.Outcome{
			Auto: &verify.Credential{PhoneNumber: phoneNumber, AutoVerified: true},
		}, nil
	}

	count, err := p.store.CountDispatch(ctx, phoneNumber, p.quotaWindow)
	if err != nil {
		return nil, verify.NewVerificationError(verify.ReasonInternal, err)
	}
	if count > p.quotaLimit {
		p.logger.Warn().Str("phone_number", phoneNumber).Int64("count", count).Msg("Dispatch quota exceeded.")
		return nil, verify.NewVerificationError(verify.ReasonQuotaExceeded, nil)
	}

	code, err := randx.OTPCode()
	if err != nil {
		return nil, verify.NewVerificationError(verify.ReasonInternal, err)
	}
	resendToken, err := randx.ResendToken()
	if err != nil {
		return nil, verify.NewVerificationError(verify.ReasonInternal, err)
	}
	verificationID := randx.VerificationID()

	if err := p.store.Create(ctx, verificationID, phoneNumber, code); err != nil {
		return nil, verify.NewVerificationError(verify.ReasonInternal, err)
	}
	if err := p.store.SaveResendToken(ctx, resendToken, verificationID); err != nil {
		return nil, verify.NewVerificationError(verify.ReasonInternal, err)
	}

	if err := p.sender.SendCode(ctx, phoneNumber, code); err != nil {
		return nil, verify.NewVerificationError(verify.ReasonSendFailed, err)
	}

	p.logger.Info().Str("verification_id", verificationID).Msg("Verification code dispatched.")
	return &verify.Outcome{
		Sent: &verify.CodeSent{VerificationID: verificationID, ResendToken: resendToken},
	}, nil
}

// Resend rotates the code behind the resend token and delivers it again.
// The verification ID stays the same, so a code entry screen already showing
// does not need to restart.
func (p *Provider) Resend(ctx context.Context, resendToken string) error {
	verificationID, err := p.store.ResolveResendToken(ctx, resendToken)
	if err != nil {
		return verify.NewVerificationError(verify.ReasonSendFailed, err)
	}

	code, err := randx.OTPCode()
	if err != nil {
		return verify.NewVerificationError(verify.ReasonInternal, err)
	}

	phoneNumber, err := p.store.Rotate(ctx, verificationID, code)
	if err != nil {
		return verify.NewVerificationError(verify.ReasonSendFailed, err)
	}

	if err := p.sender.SendCode(ctx, phoneNumber, code); err != nil {
		return verify.NewVerificationError(verify.ReasonSendFailed, err)
	}

	p.logger.Info().Str("verification_id", verificationID).Msg("Verification code re-dispatched.")
	return nil
}
