package apperror

// Client-facing Messaging error entries.
var (
	messagingInvalidArgument           = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	messagingInvalidRecipient          = ErrorInfo{"invalid-recipient", "Invalid message recipient provided."}
	messagingInvalidPayload            = ErrorInfo{"invalid-payload", "Invalid message payload provided."}
	messagingInvalidDataKey            = ErrorInfo{"invalid-data-payload-key", "The data message payload contains an invalid key."}
	messagingPayloadLimitExceeded      = ErrorInfo{"payload-size-limit-exceeded", "The provided message payload exceeds the FCM size limits."}
	messagingInvalidOptions            = ErrorInfo{"invalid-options", "Invalid message options provided."}
	messagingInvalidRegistration       = ErrorInfo{"invalid-registration-token", "Invalid registration token provided."}
	messagingRegistrationNotRegistered = ErrorInfo{"registration-token-not-registered", "The provided registration token is not registered."}
	messagingMismatchedCredential      = ErrorInfo{"mismatched-credential", "The credential used to authenticate this SDK does not have permission to send messages to the device."}
	messagingInvalidAPNSCreds          = ErrorInfo{"invalid-apns-credentials", "A message targeted to an iOS device could not be sent because the required APNs SSL certificate was not uploaded or has expired."}
	messagingTooManyTopics             = ErrorInfo{"too-many-topics", "The maximum number of topics the provided registration token can be subscribed to has been exceeded."}
	messagingDeviceRateExceeded        = ErrorInfo{"device-message-rate-exceeded", "The rate of messages to a particular device is too high."}
	messagingTopicsRateExceeded        = ErrorInfo{"topics-message-rate-exceeded", "The rate of messages to subscribers of a particular topic is too high."}
	messagingMessageRateExceeded       = ErrorInfo{"message-rate-exceeded", "Sending limit exceeded for the message target."}
	messagingThirdPartyAuthError       = ErrorInfo{"third-party-auth-error", "A message targeted to an iOS device or a web push registration could not be sent because the credential is invalid."}
	messagingAuthenticationError       = ErrorInfo{"authentication-error", "An error occurred when trying to authenticate to the FCM servers."}
	messagingServerUnavailable         = ErrorInfo{"server-unavailable", "The FCM server could not process the request in time."}
	messagingInternalError             = ErrorInfo{"internal-error", "An internal error has occurred."}
	messagingUnknownError              = ErrorInfo{"unknown-error", "An unknown server error was returned."}
)

// messagingTable covers both legacy FCM tokens and FCM v1 canonical codes.
var messagingTable = codeTable{
	prefix: PrefixMessaging,
	entries: map[string]ErrorInfo{
		// FCM v1 canonical codes
		"APNS_AUTH_ERROR":        messagingInvalidAPNSCreds,
		"INTERNAL":               messagingInternalError,
		"INVALID_ARGUMENT":       messagingInvalidArgument,
		"QUOTA_EXCEEDED":         messagingMessageRateExceeded,
		"SENDER_ID_MISMATCH":     messagingMismatchedCredential,
		"THIRD_PARTY_AUTH_ERROR": messagingThirdPartyAuthError,
		"UNAVAILABLE":            messagingServerUnavailable,
		"UNREGISTERED":           messagingRegistrationNotRegistered,
		"UNSPECIFIED_ERROR":      messagingUnknownError,

		// Legacy server tokens
		"DeviceMessageRateExceeded": messagingDeviceRateExceeded,
		"InternalServerError":       messagingInternalError,
		"InvalidDataKey":            messagingInvalidDataKey,
		"InvalidNotification":       messagingInvalidPayload,
		"InvalidPackageName":        messagingMismatchedCredential,
		"InvalidParameters":         messagingInvalidArgument,
		"InvalidRegistration":       messagingInvalidRegistration,
		"InvalidTtl":                messagingInvalidOptions,
		"MessageTooBig":             messagingPayloadLimitExceeded,
		"MissingRegistration":       messagingInvalidRecipient,
		"NotRegistered":             messagingRegistrationNotRegistered,
		"TooManyTopics":             messagingTooManyTopics,
		"TopicsMessageRateExceeded": messagingTopicsRateExceeded,
		"Unavailable":               messagingServerUnavailable,
	},
	fallback: messagingUnknownError,
}

// FromMessagingServerCode translates a raw FCM error token into a typed
// messaging error. Both legacy tokens and v1 canonical codes are covered.
func FromMessagingServerCode(serverCode, override string, raw any) *Error {
	return messagingTable.translate(serverCode, override, raw)
}

// FromMessagingStatus maps a bare HTTP status to a messaging error for
// responses that carry no server error token.
func FromMessagingStatus(status int, raw any) *Error {
	var info ErrorInfo
	switch {
	case status == 400:
		info = messagingInvalidArgument
	case status == 401 || status == 403:
		info = messagingAuthenticationError
	case status == 500:
		info = messagingInternalError
	case status == 503:
		info = messagingServerUnavailable
	default:
		return messagingTable.translate("", "", raw)
	}
	return New(PrefixMessaging, info.Code, info.Message)
}
