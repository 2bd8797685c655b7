/*
Package handler provides HTTP handler functions for phone verification and sign-in.
*/
package handler

import (
	"errors"
	"net/http"
	"time"

	"chatterbox/internal/app/verify"
	"chatterbox/internal/pkg/auth/jwt"
	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
	"chatterbox/internal/pkg/randx"
	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

type StartVerificationInput struct {
	PhoneNumber string `json:"phoneNumber"`
}

// HandleStartVerification begins a new verification flow for the submitted
// phone number and dispatches a one-time code. Requires a valid PoW proof
// token as an anti-abuse gate.
//
// For configured test numbers the provider resolves the credential itself and
// the response carries the signed-in session directly.
func HandleStartVerification(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.CheckProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input StartVerificationInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.PhoneNumber == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrPhoneNumberInvalid))
			return
		}

		flowID, flow := deps.Flows.Begin()

		result, err := flow.SubmitPhoneNumber(r.Context(), input.PhoneNumber)
		if err != nil {
			deps.Flows.Remove(flowID)
			respondVerifyError(w, r, err)
			return
		}

		if result.State == verify.StateAuthenticated {
			deps.Flows.Remove(flowID)
			respondSignedIn(w, r, deps, result.Identity)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"flowId": flowID,
			"state":  result.State.String(),
		})
	}
}

type SubmitCodeInput struct {
	FlowID string `json:"flowId"`
	Code   string `json:"code"`
}

// HandleSubmitCode checks the entered one-time code against the flow's pending
// dispatch. Success completes sign-in and issues an identity token. A wrong or
// expired code ends the attempt; the client must start over with the phone number.
func HandleSubmitCode(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SubmitCodeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// A malformed code can never match; reject it up front so it does
		// not consume a verification attempt.
		if !randx.IsValidOTPCode(input.Code) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		flow := deps.Flows.Get(input.FlowID)
		if flow == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFlowNotFound))
			return
		}

		identity, err := flow.SubmitCode(r.Context(), input.Code)
		if err != nil {
			respondVerifyError(w, r, err)
			return
		}

		deps.Flows.Remove(input.FlowID)
		respondSignedIn(w, r, deps, identity)
	}
}

type FlowInput struct {
	FlowID string `json:"flowId"`
}

// HandleResendCode re-triggers code delivery for a flow that is awaiting code entry.
func HandleResendCode(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input FlowInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		flow := deps.Flows.Get(input.FlowID)
		if flow == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFlowNotFound))
			return
		}

		if err := flow.ResendCode(r.Context()); err != nil {
			respondVerifyError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"state": flow.State().String(),
		})
	}
}

// HandleResetFlow abandons the current verification attempt and returns the
// flow to the phone entry step. Any in-flight dispatch outcome is discarded.
func HandleResetFlow(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input FlowInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		flow := deps.Flows.Get(input.FlowID)
		if flow == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFlowNotFound))
			return
		}

		flow.Reset()

		resp.RespondSuccess(w, r, map[string]any{
			"state": flow.State().String(),
		})
	}
}

// respondSignedIn issues the identity token for a completed sign-in.
func respondSignedIn(w http.ResponseWriter, r *http.Request, deps *AppDeps, identity *verify.Identity) {
	payload := &jwt.Payload{
		ID:    identity.ID,
		Phone: identity.PhoneNumber,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	if err != nil {
		logx.Error(err, "failed to generate token after sign-in", "user_id", identity.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":          identity.ID,
			"phoneNumber": identity.PhoneNumber,
			"lastLoginAt": time.Now().Format(time.RFC3339),
		},
	})
}

// respondVerifyError maps verification flow errors onto business error codes.
func respondVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *verify.VerificationError
	if errors.As(err, &verr) {
		switch verr.Reason {
		case verify.ReasonInvalidNumber:
			resp.RespondError(w, r, errs.NewError(errs.ErrPhoneNumberInvalid))
		case verify.ReasonQuotaExceeded:
			resp.RespondError(w, r, errs.NewError(errs.ErrSendQuotaExceeded))
		case verify.ReasonTimeout:
			resp.RespondError(w, r, errs.NewError(errs.ErrCodeDispatchTimeout))
		case verify.ReasonSendFailed:
			resp.RespondError(w, r, errs.NewError(errs.ErrCodeSendFailed))
		default:
			logx.Error(err, "verification dispatch failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		}
		return
	}

	var aerr *verify.AuthError
	if errors.As(err, &aerr) {
		if aerr.InvalidCredential {
			resp.RespondError(w, r, errs.NewError(errs.ErrCodeIncorrect))
		} else {
			resp.RespondError(w, r, errs.NewError(errs.ErrVerificationExpired))
		}
		return
	}

	switch {
	case errors.Is(err, verify.ErrEmptyPhoneNumber):
		resp.RespondError(w, r, errs.NewError(errs.ErrPhoneNumberInvalid))
	case errors.Is(err, verify.ErrEmptyCode):
		resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
	case errors.Is(err, verify.ErrNotEnterPhone), errors.Is(err, verify.ErrNotAwaitingCode):
		resp.RespondError(w, r, errs.NewError(errs.ErrFlowStateInvalid))
	case errors.Is(err, verify.ErrSuperseded):
		resp.RespondError(w, r, errs.NewError(errs.ErrFlowStateInvalid))
	default:
		logx.Error(err, "verification flow failed")
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
	}
}
