/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Phone Verification Errors
const (
	// ErrPhoneNumberInvalid indicates that the submitted phone number is not a valid E.164 number.
	ErrPhoneNumberInvalid = 2101

	// ErrSendQuotaExceeded indicates that the phone number has requested too many codes.
	ErrSendQuotaExceeded = 2102

	// ErrCodeDispatchTimeout indicates that code delivery did not resolve within the deadline.
	ErrCodeDispatchTimeout = 2103

	// ErrCodeSendFailed indicates that SMS delivery of the code failed.
	ErrCodeSendFailed = 2104

	// ErrCodeIncorrect indicates that the entered one-time code was wrong.
	ErrCodeIncorrect = 2105

	// ErrVerificationExpired indicates that the code or the whole verification attempt expired.
	ErrVerificationExpired = 2106

	// ErrFlowStateInvalid indicates an operation that does not match the flow's current step.
	ErrFlowStateInvalid = 2107

	// ErrFlowNotFound indicates that the referenced verification flow does not exist.
	ErrFlowNotFound = 2108
)

// 3xxx: Session and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid or incorrect.
	ErrPowChallengeInvalid = 3002

	// ErrPowChallengeInternal indicates an internal error occurred during the PoW challenge generation or validation process.
	ErrPowChallengeInternal = 3003

	// ErrUnauthorized indicates that the request carries no valid identity token.
	ErrUnauthorized = 3004
)

// 4xxx: Profile Errors
const (
	// ErrProfileSaveFailed indicates that persisting the profile record failed.
	ErrProfileSaveFailed = 4101

	// ErrUsernameTooLong indicates that the submitted username exceeds the length limit.
	ErrUsernameTooLong = 4102

	// ErrAvatarStorageFailed indicates a failure while preparing avatar storage access.
	ErrAvatarStorageFailed = 4103
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
