package baas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrInvalidCredentials = errors.New("baas: invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("baas: email not confirmed")
	ErrUserExists         = errors.New("baas: user already registered")
	ErrWeakPassword       = errors.New("baas: password rejected as weak")
	ErrOTPExpired         = errors.New("baas: token has expired or is invalid")
	ErrUnauthorized       = errors.New("baas: unauthorized")
	ErrNotFound           = errors.New("baas: not found")
	ErrRateLimited        = errors.New("baas: rate limited")
)

// Error is a non-2xx response from the BaaS.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("baas: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("baas: %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	msg := strings.ToLower(e.Message)
	switch target {
	case ErrInvalidCredentials:
		return e.Code == "invalid_credentials" ||
			(e.Code == "invalid_grant" && strings.Contains(msg, "invalid login credentials"))
	case ErrEmailNotConfirmed:
		return e.Code == "email_not_confirmed" || strings.Contains(msg, "email not confirmed")
	case ErrUserExists:
		return e.Code == "user_already_exists" || e.Code == "email_exists" ||
			strings.Contains(msg, "already registered")
	case ErrWeakPassword:
		return e.Code == "weak_password"
	case ErrOTPExpired:
		return e.Code == "otp_expired" || strings.Contains(msg, "expired or is invalid")
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Code == "bad_jwt" || e.Code == "session_not_found" ||
			e.Code == "refresh_token_not_found" || e.Code == "refresh_token_already_used"
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == "PGRST116" || e.Code == "user_not_found"
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests || strings.HasPrefix(e.Code, "over_")
	}
	return false
}

// errorBody covers the three error shapes the BaaS emits:
// auth v2 {"code":400,"error_code":"...","msg":"..."},
// OAuth-style {"error":"...","error_description":"..."} and
// row API {"code":"PGRST116","message":"..."}.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func decodeError(resp *http.Response) *Error {
	e := &Error{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return e
	}

	var stringCode string
	_ = json.Unmarshal(body.Code, &stringCode)

	e.Code = firstNonEmpty(body.ErrorCode, body.Error, stringCode)
	e.Message = firstNonEmpty(body.Msg, body.Message, body.ErrorDescription, http.StatusText(resp.StatusCode))
	return e
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
