/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large."},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Phone Verification Errors
	ErrPhoneNumberInvalid:  {Code: ErrPhoneNumberInvalid, Message: "Please enter a valid phone number."},
	ErrSendQuotaExceeded:   {Code: ErrSendQuotaExceeded, Message: "Too many codes requested for this number. Please try again later."},
	ErrCodeDispatchTimeout: {Code: ErrCodeDispatchTimeout, Message: "Sending the code took too long. Please try again."},
	ErrCodeSendFailed:      {Code: ErrCodeSendFailed, Message: "We could not send the code. Please try again."},
	ErrCodeIncorrect:       {Code: ErrCodeIncorrect, Message: "Incorrect code. Please start over."},
	ErrVerificationExpired: {Code: ErrVerificationExpired, Message: "The code has expired. Please start over."},
	ErrFlowStateInvalid:    {Code: ErrFlowStateInvalid, Message: "This step is not available right now."},
	ErrFlowNotFound:        {Code: ErrFlowNotFound, Message: "Verification session not found. Please start over."},

	// 3xxx: Session and Security Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrPowChallengeInternal: {Code: ErrPowChallengeInternal, Message: "Verification service error. Please try again later."},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 4xxx: Profile Errors
	ErrProfileSaveFailed:   {Code: ErrProfileSaveFailed, Message: "Could not save your profile. Please try again."},
	ErrUsernameTooLong:     {Code: ErrUsernameTooLong, Message: "That name is too long."},
	ErrAvatarStorageFailed: {Code: ErrAvatarStorageFailed, Message: "Avatar upload failed. Please try again."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
