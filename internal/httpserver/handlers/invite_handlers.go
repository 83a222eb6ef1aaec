package handlers

import (
	"net/http"
	"time"

	"airdemo/internal/auth"
	"airdemo/internal/invite"
	"airdemo/internal/metrics"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type inviteReq struct {
	Email string `json:"email"`
}

type acceptReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type inviteView struct {
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateInvite issues an invite for the email in the body. A mail failure
// is reported in the response but does not fail the request.
func CreateInvite(svc *invite.Service, m *metrics.Metrics, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inviteReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		res, err := svc.Create(r.Context(), req.Email, auth.Subject(r.Context()), requestOrigin(r))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		m.Invite("created")
		data := map[string]interface{}{
			"token":     res.Token,
			"link":      res.Link,
			"emailSent": res.EmailSent,
		}
		if res.EmailError != nil {
			m.Invite("email_failed")
			data["emailError"] = res.EmailError.Error()
		}
		respondData(w, data)
	}
}

func GetInvite(svc *invite.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Get(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondData(w, inviteView{Email: inv.Email, Status: inv.Status, ExpiresAt: inv.ExpiresAt})
	}
}

func AcceptInvite(svc *invite.Service, m *metrics.Metrics, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req acceptReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		userID, err := svc.Accept(r.Context(), chi.URLParam(r, "token"), req.Name, req.Password)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		m.Invite("accepted")
		respondJSON(w, http.StatusOK, envelope{Code: 0, Message: "accepted", Data: map[string]string{"userId": userID}})
	}
}
