package apperror

// Instance ID error entries.
var (
	iidInvalidArgument     = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	iidAuthenticationError = ErrorInfo{"authentication-error", "Request not authorized."}
	iidNotFound            = ErrorInfo{"api-error", "Failed to find the instance ID."}
	iidAlreadyDeleted      = ErrorInfo{"api-error", "The instance ID was already deleted."}
	iidQuotaExceeded       = ErrorInfo{"api-error", "Request throttled out by the backend server."}
	iidServerUnavailable   = ErrorInfo{"server-unavailable", "The backend server could not process the request in time."}
	iidInternalError       = ErrorInfo{"internal-error", "An internal error has occurred."}
	iidUnknownError        = ErrorInfo{"unknown-error", "An unknown server error was returned."}
)

// FromInstanceIDStatus maps the Instance ID service's status-keyed error
// surface (it returns no token payload) to typed errors.
func FromInstanceIDStatus(status int) *Error {
	var info ErrorInfo
	switch status {
	case 400:
		info = iidInvalidArgument
	case 401, 403:
		info = iidAuthenticationError
	case 404:
		info = iidNotFound
	case 409:
		info = iidAlreadyDeleted
	case 429:
		info = iidQuotaExceeded
	case 500:
		info = iidInternalError
	case 503:
		info = iidServerUnavailable
	default:
		info = iidUnknownError
	}
	return New(PrefixInstanceID, info.Code, info.Message)
}

// Security Rules error entries.
var (
	rulesInvalidArgument       = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	rulesInvalidServerResponse = ErrorInfo{"invalid-server-response", "The response received from the server was malformed."}
	rulesNotFound              = ErrorInfo{"not-found", "The specified entity could not be found."}
	rulesResourceExhausted     = ErrorInfo{"resource-exhausted", "The project quota for the specified operation has been exceeded."}
	rulesAuthenticationError   = ErrorInfo{"authentication-error", "Request not authorized."}
	rulesInternalError         = ErrorInfo{"internal-error", "An internal error has occurred."}
	rulesServiceUnavailable    = ErrorInfo{"service-unavailable", "The backend service is temporarily unavailable."}
	rulesUnknownError          = ErrorInfo{"unknown-error", "An unknown server error was returned."}
)

var rulesTable = codeTable{
	prefix: PrefixSecurityRules,
	entries: map[string]ErrorInfo{
		"ABORTED":             rulesInternalError,
		"FAILED_PRECONDITION": rulesInvalidArgument,
		"INVALID_ARGUMENT":    rulesInvalidArgument,
		"NOT_FOUND":           rulesNotFound,
		"PERMISSION_DENIED":   rulesAuthenticationError,
		"RESOURCE_EXHAUSTED":  rulesResourceExhausted,
		"UNAUTHENTICATED":     rulesAuthenticationError,
		"UNAVAILABLE":         rulesServiceUnavailable,
	},
	fallback: rulesUnknownError,
}

// FromRulesServerCode translates a raw Firebase Rules API status token
// (google.rpc.Code name) into a typed security-rules error.
func FromRulesServerCode(serverCode, override string, raw any) *Error {
	return rulesTable.translate(serverCode, override, raw)
}

// InvalidRulesServerResponse builds the error used when the Rules API
// returns a payload the client cannot interpret.
func InvalidRulesServerResponse() *Error {
	return New(PrefixSecurityRules, rulesInvalidServerResponse.Code, rulesInvalidServerResponse.Message)
}

// Project Management error entries.
var (
	pmInvalidArgument       = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	pmInvalidProjectID      = ErrorInfo{"invalid-project-id", "The permission denied error occurred while attempting to retrieve project metadata, possibly due to an invalid project ID."}
	pmInvalidServerResponse = ErrorInfo{"invalid-server-response", "The response received from the server was malformed."}
	pmNotFound              = ErrorInfo{"not-found", "The specified entity could not be found."}
	pmAlreadyExists         = ErrorInfo{"already-exists", "The specified entity already exists."}
	pmAuthenticationError   = ErrorInfo{"authentication-error", "An error occurred when trying to authenticate to the backend servers."}
	pmInternalError         = ErrorInfo{"internal-error", "An internal error has occurred."}
	pmServiceUnavailable    = ErrorInfo{"service-unavailable", "The backend service is temporarily unavailable."}
	pmUnknownError          = ErrorInfo{"unknown-error", "An unknown server error was returned."}
)

var projectManagementTable = codeTable{
	prefix: PrefixProjectManagement,
	entries: map[string]ErrorInfo{
		"ALREADY_EXISTS":    pmAlreadyExists,
		"INTERNAL":          pmInternalError,
		"INVALID_ARGUMENT":  pmInvalidArgument,
		"NOT_FOUND":         pmNotFound,
		"PERMISSION_DENIED": pmInvalidProjectID,
		"UNAUTHENTICATED":   pmAuthenticationError,
		"UNAVAILABLE":       pmServiceUnavailable,
	},
	fallback: pmUnknownError,
}

// FromProjectManagementServerCode translates a raw Firebase project
// management API status token into a typed project-management error.
func FromProjectManagementServerCode(serverCode, override string, raw any) *Error {
	return projectManagementTable.translate(serverCode, override, raw)
}

// InvalidProjectManagementServerResponse builds the error used when the
// project management API returns a payload the client cannot interpret.
func InvalidProjectManagementServerResponse() *Error {
	return New(PrefixProjectManagement, pmInvalidServerResponse.Code, pmInvalidServerResponse.Message)
}

// Realtime Database error entries. The RTDB REST surface reports errors
// as free-form strings, so the table is keyed by the few stable tokens it
// produces and everything else falls through to the fallback.
var (
	databaseInvalidArgument = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	databaseUnauthorized    = ErrorInfo{"permission-denied", "The caller does not have permission to access the specified resource."}
	databaseInternalError   = ErrorInfo{"internal-error", "An internal error has occurred."}
)

var databaseTable = codeTable{
	prefix: PrefixDatabase,
	entries: map[string]ErrorInfo{
		"INVALID_ARGUMENT":  databaseInvalidArgument,
		"PERMISSION_DENIED": databaseUnauthorized,
	},
	fallback: databaseInternalError,
}

// FromDatabaseServerCode translates a raw Realtime Database error token
// into a typed database error.
func FromDatabaseServerCode(serverCode, override string, raw any) *Error {
	return databaseTable.translate(serverCode, override, raw)
}

// Firestore error entries, keyed by google.rpc.Code names.
var (
	firestoreInvalidArgument = ErrorInfo{"invalid-argument", "Invalid argument provided."}
	firestoreNotFound        = ErrorInfo{"not-found", "The specified entity could not be found."}
	firestoreAborted         = ErrorInfo{"aborted", "The operation was aborted."}
	firestoreUnavailable     = ErrorInfo{"unavailable", "The service is currently unavailable."}
	firestoreUnknownError    = ErrorInfo{"unknown-error", "An unknown server error was returned."}
)

var firestoreTable = codeTable{
	prefix: PrefixFirestore,
	entries: map[string]ErrorInfo{
		"ABORTED":          firestoreAborted,
		"INVALID_ARGUMENT": firestoreInvalidArgument,
		"NOT_FOUND":        firestoreNotFound,
		"UNAVAILABLE":      firestoreUnavailable,
	},
	fallback: firestoreUnknownError,
}

// FromFirestoreServerCode translates a raw Firestore status token into a
// typed firestore error.
func FromFirestoreServerCode(serverCode, override string, raw any) *Error {
	return firestoreTable.translate(serverCode, override, raw)
}
