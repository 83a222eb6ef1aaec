package handlers

import (
	"net/http"
	"time"

	"airdemo/internal/auth"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"go.uber.org/zap"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"isAdmin"`
}

func viewUser(u *models.User) userView {
	roles := u.RoleNames()
	v := userView{ID: u.ID, Email: u.Email, Name: u.Name, Roles: roles}
	for _, r := range roles {
		if r == models.RoleAdmin {
			v.IsAdmin = true
		}
	}
	return v
}

func Login(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		lg.Infow("login", "user_id", sess.User.ID)
		respondData(w, map[string]any{
			"token":     sess.Token,
			"expiresAt": sess.ExpiresAt,
			"user":      viewUser(sess.User),
		})
	}
}

func Logout(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), auth.FromContext(r.Context())); err != nil {
			respondError(w, lg, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name: auth.CookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true,
		})
		respondOK(w, "logged out")
	}
}

func Me(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := st.UserByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondData(w, viewUser(u))
	}
}
