// internal/core/status.go
//
// Recognized HTTP status codes and their symbolic names.
//
// Handlers may set a status either numerically (PutStatus(404)) or by the
// symbolic snake_case name (PutStatusName("not_found")).  Both forms are
// accepted unconditionally at set time and checked against this table only
// when the Finalizer commits, so a handler can set-then-correct freely.
package core

import "net/http"

// statusNames maps symbolic names to numeric codes.  The set mirrors the
// reason phrases of the codes the stdlib recognizes.
var statusNames = map[string]int{
	"continue":                      http.StatusContinue,
	"switching_protocols":           http.StatusSwitchingProtocols,
	"ok":                            http.StatusOK,
	"created":                       http.StatusCreated,
	"accepted":                      http.StatusAccepted,
	"non_authoritative_information": http.StatusNonAuthoritativeInfo,
	"no_content":                    http.StatusNoContent,
	"reset_content":                 http.StatusResetContent,
	"partial_content":               http.StatusPartialContent,
	"multiple_choices":              http.StatusMultipleChoices,
	"moved_permanently":             http.StatusMovedPermanently,
	"found":                         http.StatusFound,
	"see_other":                     http.StatusSeeOther,
	"not_modified":                  http.StatusNotModified,
	"temporary_redirect":            http.StatusTemporaryRedirect,
	"permanent_redirect":            http.StatusPermanentRedirect,
	"bad_request":                   http.StatusBadRequest,
	"unauthorized":                  http.StatusUnauthorized,
	"payment_required":              http.StatusPaymentRequired,
	"forbidden":                     http.StatusForbidden,
	"not_found":                     http.StatusNotFound,
	"method_not_allowed":            http.StatusMethodNotAllowed,
	"not_acceptable":                http.StatusNotAcceptable,
	"proxy_authentication_required": http.StatusProxyAuthRequired,
	"request_timeout":               http.StatusRequestTimeout,
	"conflict":                      http.StatusConflict,
	"gone":                          http.StatusGone,
	"length_required":               http.StatusLengthRequired,
	"precondition_failed":           http.StatusPreconditionFailed,
	"payload_too_large":             http.StatusRequestEntityTooLarge,
	"uri_too_long":                  http.StatusRequestURITooLong,
	"unsupported_media_type":        http.StatusUnsupportedMediaType,
	"expectation_failed":            http.StatusExpectationFailed,
	"im_a_teapot":                   http.StatusTeapot,
	"unprocessable_entity":          http.StatusUnprocessableEntity,
	"locked":                        http.StatusLocked,
	"failed_dependency":             http.StatusFailedDependency,
	"upgrade_required":              http.StatusUpgradeRequired,
	"precondition_required":         http.StatusPreconditionRequired,
	"too_many_requests":             http.StatusTooManyRequests,
	"internal_server_error":         http.StatusInternalServerError,
	"not_implemented":               http.StatusNotImplemented,
	"bad_gateway":                   http.StatusBadGateway,
	"service_unavailable":           http.StatusServiceUnavailable,
	"gateway_timeout":               http.StatusGatewayTimeout,
}

// StatusFromName resolves a symbolic status name.
func StatusFromName(name string) (int, bool) {
	code, ok := statusNames[name]
	return code, ok
}

// StatusRecognized reports whether a numeric code is in the recognized
// table.  The stdlib's reason-phrase table is the source of truth.
func StatusRecognized(code int) bool {
	return http.StatusText(code) != ""
}
