package apperror

// Client-facing Auth error entries.
var (
	authClaimsTooLarge           = ErrorInfo{"claims-too-large", "Developer claims maximum payload size exceeded."}
	authConfigurationExists      = ErrorInfo{"configuration-exists", "A configuration already exists with the provided identifier."}
	authConfigurationNotFound    = ErrorInfo{"configuration-not-found", "There is no configuration corresponding to the provided identifier."}
	authEmailAlreadyExists       = ErrorInfo{"email-already-exists", "The email address is already in use by another account."}
	authEmailNotFound            = ErrorInfo{"email-not-found", "There is no user record corresponding to the provided email."}
	authForbiddenClaim           = ErrorInfo{"reserved-claim", "The specified developer claim is reserved and cannot be specified."}
	authIDTokenExpired           = ErrorInfo{"id-token-expired", "The provided Firebase ID token is expired."}
	authIDTokenRevoked           = ErrorInfo{"id-token-revoked", "The Firebase ID token has been revoked."}
	authInsufficientPermission   = ErrorInfo{"insufficient-permission", "Credential implementation provided to initializeApp() via the \"credential\" property has insufficient permission to access the requested resource."}
	authInternalError            = ErrorInfo{"internal-error", "An internal error has occurred."}
	authInvalidClaims            = ErrorInfo{"invalid-claims", "The provided custom claim attributes are invalid."}
	authInvalidContinueURI       = ErrorInfo{"invalid-continue-uri", "The continue URL must be a valid URL string."}
	authInvalidCreationTime      = ErrorInfo{"invalid-creation-time", "The creation time must be a valid UTC date string."}
	authInvalidDisabledField     = ErrorInfo{"invalid-disabled-field", "The disabled field must be a boolean."}
	authInvalidDisplayName       = ErrorInfo{"invalid-display-name", "The displayName field must be a valid string."}
	authInvalidDynamicLinkDomain = ErrorInfo{"invalid-dynamic-link-domain", "The provided dynamic link domain is not configured or authorized for the current project."}
	authInvalidEmail             = ErrorInfo{"invalid-email", "The email address is improperly formatted."}
	authInvalidIDToken           = ErrorInfo{"invalid-id-token", "The provided ID token is not a valid Firebase ID token."}
	authInvalidPageToken         = ErrorInfo{"invalid-page-token", "The page token must be a valid non-empty string."}
	authInvalidPassword          = ErrorInfo{"invalid-password", "The password must be a string with at least 6 characters."}
	authInvalidPhoneNumber       = ErrorInfo{"invalid-phone-number", "The phone number must be a non-empty E.164 standard compliant identifier string."}
	authMissingUID               = ErrorInfo{"missing-uid", "A uid identifier is required for the current operation."}
	authOperationNotAllowed      = ErrorInfo{"operation-not-allowed", "The given sign-in provider is disabled for this Firebase project."}
	authPhoneNumberExists        = ErrorInfo{"phone-number-already-exists", "The user with the provided phone number already exists."}
	authProjectNotFound          = ErrorInfo{"project-not-found", "No Firebase project was found for the provided credential."}
	authQuotaExceeded            = ErrorInfo{"quota-exceeded", "The project quota for the specified operation has been exceeded."}
	authSessionCookieExpired     = ErrorInfo{"session-cookie-expired", "The Firebase session cookie is expired."}
	authSessionCookieRevoked     = ErrorInfo{"session-cookie-revoked", "The Firebase session cookie has been revoked."}
	authTenantNotFound           = ErrorInfo{"tenant-not-found", "There is no tenant corresponding to the provided identifier."}
	authUIDAlreadyExists         = ErrorInfo{"uid-already-exists", "The user with the provided uid already exists."}
	authUnauthorizedDomain       = ErrorInfo{"unauthorized-continue-uri", "The domain of the continue URL is not whitelisted."}
	authUserDisabled             = ErrorInfo{"user-disabled", "The user record is disabled."}
	authUserNotFound             = ErrorInfo{"user-not-found", "There is no user record corresponding to the provided identifier."}
)

// authTable maps raw identitytoolkit server tokens to client entries.
var authTable = codeTable{
	prefix: PrefixAuth,
	entries: map[string]ErrorInfo{
		"CLAIMS_TOO_LARGE":            authClaimsTooLarge,
		"CONFIGURATION_EXISTS":        authConfigurationExists,
		"CONFIGURATION_NOT_FOUND":     authConfigurationNotFound,
		"DUPLICATE_EMAIL":             authEmailAlreadyExists,
		"DUPLICATE_LOCAL_ID":          authUIDAlreadyExists,
		"EMAIL_EXISTS":                authEmailAlreadyExists,
		"EMAIL_NOT_FOUND":             authEmailNotFound,
		"FORBIDDEN_CLAIM":             authForbiddenClaim,
		"INSUFFICIENT_PERMISSION":     authInsufficientPermission,
		"INTERNAL_ERROR":              authInternalError,
		"INVALID_CLAIMS":              authInvalidClaims,
		"INVALID_CONTINUE_URI":        authInvalidContinueURI,
		"INVALID_CREATION_TIME":       authInvalidCreationTime,
		"INVALID_DISABLED_FIELD":      authInvalidDisabledField,
		"INVALID_DISPLAY_NAME":        authInvalidDisplayName,
		"INVALID_DYNAMIC_LINK_DOMAIN": authInvalidDynamicLinkDomain,
		"INVALID_EMAIL":               authInvalidEmail,
		"INVALID_ID_TOKEN":            authInvalidIDToken,
		"INVALID_PAGE_SELECTION":      authInvalidPageToken,
		"INVALID_PHONE_NUMBER":        authInvalidPhoneNumber,
		"MISSING_LOCAL_ID":            authMissingUID,
		"OPERATION_NOT_ALLOWED":       authOperationNotAllowed,
		"PERMISSION_DENIED":           authInsufficientPermission,
		"PHONE_NUMBER_EXISTS":         authPhoneNumberExists,
		"PROJECT_NOT_FOUND":           authProjectNotFound,
		"QUOTA_EXCEEDED":              authQuotaExceeded,
		"TENANT_NOT_FOUND":            authTenantNotFound,
		"TOKEN_EXPIRED":               authIDTokenExpired,
		"UNAUTHORIZED_DOMAIN":         authUnauthorizedDomain,
		"USER_DISABLED":               authUserDisabled,
		"USER_NOT_FOUND":              authUserNotFound,
		"WEAK_PASSWORD":               authInvalidPassword,
	},
	fallback: authInternalError,
}

// FromAuthServerCode translates a raw identitytoolkit error token into a
// typed auth error. See codeTable.translate for the lookup rules.
func FromAuthServerCode(serverCode, override string, raw any) *Error {
	return authTable.translate(serverCode, override, raw)
}
