package sandbox

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"

	"github.com/relabs-tech/aqaar/api"
)

func (b *Backend) handleProperties() {
	list := func(filter func(api.Property) bool) http.Handler {
		return handlers.CompressHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			properties := []api.Property{}
			for _, p := range b.Properties() {
				if filter(p) {
					properties = append(properties, p)
				}
			}
			writeJSON(w, http.StatusOK, properties)
		}))
	}
	withStatus := func(statuses ...api.PropertyStatus) func(api.Property) bool {
		return func(p api.Property) bool {
			for _, s := range statuses {
				if p.Status == s {
					return true
				}
			}
			return false
		}
	}

	b.router.Handle(api.PathAllProperties, list(withStatus(api.PropertyStatuses...))).Methods(http.MethodGet)
	b.router.Handle(api.PathOwnerProperties, list(withStatus(api.StatusPending, api.StatusRejected))).Methods(http.MethodGet)
	for _, status := range api.PropertyStatuses {
		path := api.PathOwnerProperties + "/" + strings.ToLower(string(status))
		b.router.Handle(path, list(withStatus(status))).Methods(http.MethodGet)
	}

	b.router.HandleFunc(api.PathApprove+"/{id:[0-9]+}", b.review(api.StatusApproved)).Methods(http.MethodPost)
	b.router.HandleFunc(api.PathReject+"/{id:[0-9]+}", b.review(api.StatusRejected)).Methods(http.MethodPost)

	b.router.HandleFunc(api.PathDeleteApproved+"/{id:[0-9]+}", b.deleteProperty(true)).Methods(http.MethodDelete)
	b.router.HandleFunc(api.PathDeleteUnapproved+"/{id:[0-9]+}", b.deleteProperty(false)).Methods(http.MethodDelete)
}

// review moves a pending property to status
func (b *Backend) review(status api.PropertyStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.propertyIndex(id)
		if i < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Property not found")
			return
		}
		if b.properties[i].Status != api.StatusPending {
			writeMessage(w, http.StatusBadRequest, "detail", "Property is not pending")
			return
		}
		b.properties[i].Status = status
		b.properties[i].UpdatedAt = b.timestamp()
		writeJSON(w, http.StatusOK, b.properties[i])
	}
}

func (b *Backend) deleteProperty(approved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := idParameter(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.propertyIndex(id)
		if i < 0 {
			writeMessage(w, http.StatusNotFound, "message", "Property not found")
			return
		}
		if (b.properties[i].Status == api.StatusApproved) != approved {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte("wrong endpoint for the status of this property"))
			return
		}
		b.properties = append(b.properties[:i], b.properties[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

// propertyIndex must be called with the mutex held
func (b *Backend) propertyIndex(id int64) int {
	for i, p := range b.properties {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Properties returns a copy of all properties
func (b *Backend) Properties() []api.Property {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Property{}, b.properties...)
}

// AddProperty adds a property as if an admin submitted it. A zero ID is replaced by a
// generated one.
func (b *Backend) AddProperty(p api.Property) api.Property {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.nextID()
	}
	if p.Status == "" {
		p.Status = api.StatusPending
	}
	if p.CreatedAt == "" {
		p.CreatedAt = b.timestamp()
		p.UpdatedAt = p.CreatedAt
	}
	b.properties = append(b.properties, p)
	return p
}
