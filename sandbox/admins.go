package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/aqaar/api"
)

func idParameter(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func (b *Backend) handleAdmins() {
	b.router.Handle(api.PathAdmins, handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.Admins())
	}))).Methods(http.MethodGet)

	b.router.HandleFunc(api.PathToggleAdmin+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, acc := range b.accounts {
			if acc.admin.ID == id && acc.admin.Role.Name != RoleOwner {
				acc.admin.Active = !acc.admin.Active
				acc.admin.UpdatedAt = b.timestamp()
				writeJSON(w, http.StatusOK, acc.admin)
				return
			}
		}
		writeMessage(w, http.StatusNotFound, "error", "User not found")
	}).Methods(http.MethodPut)

	b.router.HandleFunc(api.PathDeleteAdmin+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, acc := range b.accounts {
			if acc.admin.ID == id && acc.admin.Role.Name != RoleOwner {
				if acc.admin.Active {
					writeMessage(w, http.StatusConflict, "message", "Cannot delete an active user")
					return
				}
				b.accounts = append(b.accounts[:i], b.accounts[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeMessage(w, http.StatusNotFound, "error", "User not found")
	}).Methods(http.MethodDelete)
}

// Admins returns all accounts as the user list reports them
func (b *Backend) Admins() []api.Admin {
	b.mu.Lock()
	defer b.mu.Unlock()
	admins := make([]api.Admin, len(b.accounts))
	for i, acc := range b.accounts {
		admins[i] = acc.admin
	}
	return admins
}
