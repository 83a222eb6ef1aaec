package handlers

import (
	"net/http"

	"airdemo/internal/models"
	"airdemo/internal/store"

	"go.uber.org/zap"
)

type adminView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListAdmins returns every admin account. The admin demo list uses it for
// the owner filter.
func ListAdmins(st *store.Store, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := st.Admins(r.Context())
		if err != nil {
			respondError(w, lg, err)
			return
		}
		out := make([]adminView, 0, len(users))
		for _, u := range users {
			out = append(out, adminOf(u))
		}
		respondData(w, out)
	}
}

func adminOf(u models.User) adminView {
	return adminView{ID: u.ID, Name: u.Name, Email: u.Email}
}
