package handler

import (
	"net/http"

	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

// HandlePowChallenge issues a fresh PoW nonce for the client to solve before
// it may request verification codes.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nonce := deps.Pow.GenerateNonce()

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      nonce,
			"difficulty": deps.Config.PowDifficulty,
		})
	}
}

type PowProofInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowVerify validates the client's solution and issues a short-lived
// proof token accepted by the verification endpoints.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PowProofInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.Pow.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"powToken": token,
		})
	}
}
