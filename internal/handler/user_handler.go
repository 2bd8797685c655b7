/*
Package handler provides HTTP handler functions for profile reads and saves.
*/
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"chatterbox/internal/app/profile"
	"chatterbox/internal/app/verify"
	"chatterbox/internal/pkg/auth/jwt"
	"chatterbox/internal/pkg/errs"
	"chatterbox/internal/pkg/logx"
	"chatterbox/internal/pkg/req"
	"chatterbox/internal/pkg/resp"
)

const (
	// MaxUsernameLength bounds the display name, counted in runes.
	MaxUsernameLength = 30

	// AvatarURLDuration is the validity period of presigned avatar URLs.
	AvatarURLDuration = 15 * time.Minute

	// MaxAvatarSize bounds avatar uploads (5 MB).
	MaxAvatarSize int64 = 5 << 20
)

// identityFromPayload rebuilds the session identity carried by the token.
func identityFromPayload(p *jwt.Payload) *verify.Identity {
	return &verify.Identity{ID: p.ID, PhoneNumber: p.Phone}
}

// HandleGetUserProfile returns the signed-in user's profile record. Users who
// have never saved get the default record with an empty username.
func HandleGetUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		user, err := deps.Profiles.Load(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "get_user_profile: load failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		avatarURL := ""
		if key, err := deps.Profiles.Avatar(r.Context(), identity.ID); err == nil && key != "" {
			if url, perr := deps.AvatarStorage.PresignDownload(r.Context(), key, AvatarURLDuration); perr == nil {
				avatarURL = url
			}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": map[string]any{
				"userId":   user.UserID,
				"username": user.Username,
				"avatar":   avatarURL,
			},
		})
	}
}

type SaveProfileInput struct {
	Username string `json:"username"`
}

// HandleSaveUserProfile overwrites the signed-in user's profile record with
// the submitted username. The write is wholesale: the stored record afterwards
// is exactly the submitted one, regardless of what was there before.
func HandleSaveUserProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SaveProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if utf8.RuneCountInString(input.Username) > MaxUsernameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTooLong))
			return
		}

		user, err := profile.Materialize(identityFromPayload(identity))
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		user.EditUsername(input.Username)

		if err := deps.Profiles.Save(r.Context(), *user); err != nil {
			if errors.Is(err, profile.ErrIdentityMissing) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			logx.Error(err, "save_profile: store write failed", "user_id", user.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrProfileSaveFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": map[string]any{
				"userId":   user.UserID,
				"username": user.Username,
			},
		})
	}
}

type PresignAvatarInput struct {
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatarURL issues a presigned upload URL for a new avatar and
// records its object key. The previous avatar object, if any, is deleted in
// the background once the key changes.
func HandlePresignAvatarURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FileSize <= 0 || input.FileSize > MaxAvatarSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if input.MimeType != "image/jpeg" && input.MimeType != "image/png" && input.MimeType != "image/webp" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		oldKey, err := deps.Profiles.Avatar(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "presign_avatar: avatar lookup failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		key := "avatars/" + identity.ID + "/" + uuid.New().String()

		url, err := deps.AvatarStorage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, AvatarURLDuration)
		if err != nil {
			logx.Error(err, "presign_avatar: presign failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		if err := deps.Profiles.SetAvatar(r.Context(), identity.ID, key); err != nil {
			logx.Error(err, "presign_avatar: key record failed", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarStorageFailed))
			return
		}

		if oldKey != "" && oldKey != key {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = deps.AvatarStorage.Delete(ctx, k)
			}(oldKey)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": url,
			"key":       key,
		})
	}
}
