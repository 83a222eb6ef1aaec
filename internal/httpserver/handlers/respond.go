package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"airdemo/internal/ai"
	"airdemo/internal/auth"
	"airdemo/internal/flow"
	"airdemo/internal/invite"
	"airdemo/internal/store"

	"go.uber.org/zap"
)

// envelope is the body of every JSON response.
type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, envelope{Code: 0, Data: data})
}

func respondOK(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, envelope{Code: 0, Message: message})
}

func respondErr(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Code: 1, Message: message})
}

// validationError is a client mistake in the request body or query.
type validationError string

func (e validationError) Error() string { return string(e) }

func invalid(msg string) error { return validationError(msg) }

func statusFor(err error) int {
	var ve validationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, flow.ErrEmptyNodeKey),
		errors.Is(err, flow.ErrDuplicateNodeKey),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, invite.ErrInvalidEmail),
		errors.Is(err, invite.ErrPasswordRequired),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, ai.ErrMissingInput),
		errors.Is(err, ai.ErrMissingMessage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound), errors.Is(err, invite.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrStale), errors.Is(err, invite.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, invite.ErrExpired):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

// respondError maps err onto the error taxonomy. Server errors are logged.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		lg.Errorw("request failed", "err", err)
	}
	respondErr(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid JSON body: " + err.Error())
	}
	return nil
}

// jsonKind returns the first significant byte of raw, or 0 when absent.
func jsonKind(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// flexInt accepts 3, "3" and null.
type flexInt struct {
	set bool
	v   int
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	f.set = true
	if s == "" || s == "null" {
		f.v = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return invalid("sort must be a number")
	}
	f.v = int(n)
	return nil
}

// requestOrigin is the scheme and host the client used.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	return scheme + "://" + r.Host
}

// baseURL prefers the configured application URL over the request origin.
func baseURL(appURL string, r *http.Request) string {
	if appURL != "" {
		return appURL
	}
	return requestOrigin(r)
}
