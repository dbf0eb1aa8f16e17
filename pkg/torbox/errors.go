package torbox

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by merged lookups when neither the active nor the queued
// collection holds a matching item.
var ErrNotFound = errors.New("torbox: item not found")

// Error codes returned in the envelope's error field.
const (
	CodeDatabaseError           = "DATABASE_ERROR"
	CodeUnknownError            = "UNKNOWN_ERROR"
	CodeNoAuth                  = "NO_AUTH"
	CodeBadToken                = "BAD_TOKEN"
	CodeAuthError               = "AUTH_ERROR"
	CodeInvalidOption           = "INVALID_OPTION"
	CodeRedirectError           = "REDIRECT_ERROR"
	CodeOAuthVerificationError  = "OAUTH_VERIFICATION_ERROR"
	CodeEndpointNotFound        = "ENDPOINT_NOT_FOUND"
	CodeItemNotFound            = "ITEM_NOT_FOUND"
	CodePlanRestrictedFeature   = "PLAN_RESTRICTED_FEATURE"
	CodeDuplicateItem           = "DUPLICATE_ITEM"
	CodeBozoRSSFeed             = "BOZO_RSS_FEED"
	CodeSellixError             = "SELLIX_ERROR"
	CodeTooMuchData             = "TOO_MUCH_DATA"
	CodeMissingRequiredOption   = "MISSING_REQUIRED_OPTION"
	CodeTooManyOptions          = "TOO_MANY_OPTIONS"
	CodeBozoTorrent             = "BOZO_TORRENT"
	CodeNoServersAvailableError = "NO_SERVERS_AVAILABLE_ERROR"
	CodeMonthlyLimit            = "MONTHLY_LIMIT"
	CodeCooldownLimit           = "COOLDOWN_LIMIT"
	CodeActiveLimit             = "ACTIVE_LIMIT"
	CodeDownloadServerError     = "DOWNLOAD_SERVER_ERROR"
	CodeBozoNZB                 = "BOZO_NZB"
	CodeSearchError             = "SEARCH_ERROR"
	CodeInvalidDevice           = "INVALID_DEVICE"
	CodeDiffIssue               = "DIFF_ISSUE"
	CodeLinkOffline             = "LINK_OFFLINE"

	// CodeMissing is used when the service reports a failure without a code.
	CodeMissing = "NULL_DETAIL_ERROR"
)

var messages = map[string]string{
	CodeDatabaseError:           "Could not access internal database/memory store information.",
	CodeUnknownError:            "The reason for the error is unknown. Usually, there will be error data attached in the 'data' key. In these cases, please report the request to contact@torbox.app.",
	CodeNoAuth:                  "There are no provided credentials.",
	CodeBadToken:                "The provided token is invalid.",
	CodeAuthError:               "There was an error verifying the given authentication.",
	CodeInvalidOption:           "The provided option is invalid.",
	CodeRedirectError:           "The server tried redirecting, but it faulted.",
	CodeOAuthVerificationError:  "The server tried verifying your OAuth token, but it was not accepted by the provider.",
	CodeEndpointNotFound:        "You have hit an endpoint that doesn't exist.",
	CodeItemNotFound:            "The item you queried cannot be found.",
	CodePlanRestrictedFeature:   "This feature is restricted to users of higher plans. The user is recommended to upgrade their plan to use this endpoint.",
	CodeDuplicateItem:           "This item already exists.",
	CodeBozoRSSFeed:             "This RSS feed is invalid or not a well-formed XML.",
	CodeSellixError:             "There was an error with the Sellix API, usually in the case of payments.",
	CodeTooMuchData:             "Client sent too much data to the API. Please keep requests under 100MB in size.",
	CodeMissingRequiredOption:   "The API is missing required information to process the request.",
	CodeTooManyOptions:          "Client sent too many options. Usually this has to do with the API requiring only 1 option but the client sent more than the required.",
	CodeBozoTorrent:             "The torrent sent is not a valid torrent.",
	CodeNoServersAvailableError: "There are no download servers available to handle this request. This should never happen. If you receive this error, please contact us at contact@torbox.app.",
	CodeMonthlyLimit:            "User has hit the maximum monthly limit. It is recommended user upgrade their account to be able to download more.",
	CodeCooldownLimit:           "User is on download cooldown. It is recommended user upgrade their account to bypass this restriction.",
	CodeActiveLimit:             "User has hit their max active download limit. It is recommended user upgrade their account or purchase addons to bypass this restriction.",
	CodeDownloadServerError:     "There was an error interacting with the download server. It is recommended to wait before trying again.",
	CodeBozoNZB:                 "The NZB sent is not a valid NZB file.",
	CodeSearchError:             "There was an error searching using the TorBox Search API.",
	CodeInvalidDevice:           "The client is sending requests from the incorrect device.",
	CodeDiffIssue:               "The request parameters sent do not allow for this request to complete.",
	CodeLinkOffline:             "The link given is inaccessible or has no online files.",
}

// Message returns the human readable explanation for an error code, or the code
// itself when it is not recognized.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return code
}

// Error is a remote application error: the service answered with success=false.
type Error struct {
	Code   string
	Detail string
}

func newError(code, detail string) *Error {
	if code == "" {
		code = CodeMissing
	}
	return &Error{Code: code, Detail: detail}
}

// Error prefers the explanation of a known code over the raw detail text.
func (e *Error) Error() string {
	if msg, ok := messages[e.Code]; ok {
		return msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return e.Code
}

// Is matches another *Error with the same code, so sentinels like ErrItemNotFound
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNoAuth        = &Error{Code: CodeNoAuth}
	ErrBadToken      = &Error{Code: CodeBadToken}
	ErrItemNotFound  = &Error{Code: CodeItemNotFound}
	ErrDuplicateItem = &Error{Code: CodeDuplicateItem}
	ErrMonthlyLimit  = &Error{Code: CodeMonthlyLimit}
	ErrCooldownLimit = &Error{Code: CodeCooldownLimit}
	ErrActiveLimit   = &Error{Code: CodeActiveLimit}
	ErrBozoTorrent   = &Error{Code: CodeBozoTorrent}
	ErrBozoNZB       = &Error{Code: CodeBozoNZB}
	ErrLinkOffline   = &Error{Code: CodeLinkOffline}
)

// TransportError covers everything that kept a response envelope from being read:
// connection failures, unexpected statuses and bodies that are not envelopes.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("torbox: transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("torbox: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
