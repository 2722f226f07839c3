// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/aqaar/core/apierror"
	"github.com/relabs-tech/aqaar/core/i18n"
	"github.com/relabs-tech/aqaar/core/logger"
)

type fixedLanguage string

func (l fixedLanguage) Language(ctx context.Context) string {
	return string(l)
}

// echoRouter answers every request with the request headers it received
func echoRouter() *mux.Router {
	router := mux.NewRouter()
	echo := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"authorization":  r.Header.Get("Authorization"),
			"language":       r.Header.Get("Accept-Language"),
			"requestID":      r.Header.Get("X-Request-ID"),
			"contentType":    r.Header.Get("Content-Type"),
			"custom":         r.Header.Get("X-Custom"),
			"method":         r.Method,
			"query":          r.URL.RawQuery,
			"path":           r.URL.Path,
			"acceptedFormat": r.Header.Get("Accept"),
		})
	}
	router.HandleFunc("/auth/login", echo)
	router.HandleFunc("/auth/register", echo)
	router.HandleFunc("/echo", echo)
	router.HandleFunc("/items/{id}", echo)
	router.HandleFunc("/items", echo)
	router.HandleFunc("/fail/{status}", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["status"] {
		case "400":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"title is required","code":"VALIDATION"}`))
		case "404":
			w.WriteHeader(http.StatusNotFound)
		case "409":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`"already approved"`))
		}
	})
	router.HandleFunc("/created", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7}`))
	})
	router.HandleFunc("/garbled", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":`))
	})
	router.HandleFunc("/nocontent", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return router
}

func TestHeaders(t *testing.T) {
	c := NewWithRouter(echoRouter()).
		WithToken("secret").
		WithLanguageSource(fixedLanguage("en")).
		WithHeader("X-Custom", "yes")

	var got map[string]string
	status, err := c.Get("/echo", &got)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bearer secret", got["authorization"])
	assert.Equal(t, "en", got["language"])
	assert.Equal(t, "yes", got["custom"])
	assert.Equal(t, "application/json", got["acceptedFormat"])
	assert.NotEmpty(t, got["requestID"])
}

func TestPublicPathsCarryNoToken(t *testing.T) {
	c := NewWithRouter(echoRouter()).WithToken("secret")

	for _, path := range []string{"/auth/login", "/auth/register"} {
		var got map[string]string
		_, err := c.Post(path, map[string]string{"email": "a@b.c"}, &got)
		require.NoError(t, err)
		assert.Empty(t, got["authorization"], path)
		assert.Equal(t, "application/json", got["contentType"])
	}
}

func TestNoTokenNoHeader(t *testing.T) {
	c := NewWithRouter(echoRouter()).WithToken("")
	var got map[string]string
	_, err := c.Get("/echo", &got)
	require.NoError(t, err)
	assert.Empty(t, got["authorization"])
}

func TestDefaultLanguageIsArabic(t *testing.T) {
	c := NewWithRouter(echoRouter())
	var got map[string]string
	_, err := c.Get("/echo", &got)
	require.NoError(t, err)
	assert.Equal(t, i18n.Arabic, got["language"])
	assert.Equal(t, i18n.Arabic, c.WithLanguageSource(fixedLanguage("fr")).Language())
}

func TestRequestIDFromContext(t *testing.T) {
	ctx, _ := logger.ContextWithLogger(context.Background())
	c := NewWithRouter(echoRouter()).WithContext(ctx)
	var got map[string]string
	_, err := c.Get("/echo", &got)
	require.NoError(t, err)
	assert.Equal(t, logger.RequestIDFromContext(ctx), got["requestID"])
}

func TestWithHeaderDoesNotLeak(t *testing.T) {
	base := NewWithRouter(echoRouter())
	_ = base.WithHeader("X-Custom", "leak")

	var got map[string]string
	_, err := base.Get("/echo", &got)
	require.NoError(t, err)
	assert.Empty(t, got["custom"])
}

func TestAnySuccessStatus(t *testing.T) {
	c := NewWithRouter(echoRouter())

	var created struct{ ID int64 }
	status, err := c.Post("/created", nil, &created)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(7), created.ID)

	var raw []byte
	status, err = c.Put("/nocontent", []byte(`{}`), &raw)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, raw)

	status, err = c.Delete("/nocontent")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestErrorMessages(t *testing.T) {
	c := NewWithRouter(echoRouter()).WithLanguageSource(fixedLanguage("en"))

	status, err := c.Get("/fail/400", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title is required", err.Error())
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.Delete("/fail/404")
	require.Error(t, err)
	assert.Equal(t, i18n.T("en", "errors.status.404"), err.Error())

	_, err = c.Post("/fail/409", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "already approved", err.Error())
}

func TestUndecodableResponse(t *testing.T) {
	c := NewWithRouter(echoRouter()).WithLanguageSource(fixedLanguage("en"))

	var created struct{ ID int64 }
	status, err := c.Get("/garbled", &created)
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, status)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "cannot decode response")
	assert.Equal(t, http.StatusOK, apierror.Status(err))
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewWithURL(url).WithLanguageSource(fixedLanguage("en"))
	status, err := c.Get("/echo", nil)
	require.Error(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, i18n.T("en", "errors.network"), err.Error())
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeNetwork, apiErr.Code)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewWithURL(server.URL).WithTimeout(50 * time.Millisecond)
	_, err := c.Get("/slow", nil)
	require.Error(t, err)
	assert.Equal(t, i18n.T(i18n.Arabic, "errors.timeout"), err.Error())
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.CodeTimeout, apiErr.Code)
}

func TestOverHTTP(t *testing.T) {
	server := httptest.NewServer(echoRouter())
	defer server.Close()

	c := NewWithURL(server.URL + "/").WithToken("secret")
	var got map[string]string
	_, err := c.Get("/echo", &got)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", got["authorization"])
	assert.Equal(t, "/echo", got["path"])
}

func TestMultipart(t *testing.T) {
	router := mux.NewRouter()
	type received struct {
		Owner       string
		OwnerType   string
		Image       string
		ImageName   string
		Placeholder string
		Method      string
	}
	var rec received
	router.HandleFunc("/real-owners", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		rec.Method = r.Method
		if files := r.MultipartForm.File["realowner"]; len(files) == 1 {
			rec.OwnerType = files[0].Header.Get("Content-Type")
			f, _ := files[0].Open()
			b, _ := io.ReadAll(f)
			rec.Owner = string(b)
		}
		if files := r.MultipartForm.File["ibanImage"]; len(files) == 1 {
			rec.ImageName = files[0].Filename
			f, _ := files[0].Open()
			b, _ := io.ReadAll(f)
			rec.Image = string(b)
		}
		rec.Placeholder = r.FormValue("note")
		w.WriteHeader(http.StatusCreated)
	})

	owner, err := JSONPart("realowner", map[string]string{"fullName": "Sara Ahmed"})
	require.NoError(t, err)
	form := Multipart{}
	form.Add(owner, FilePart("ibanImage", "iban.png", []byte("png-bytes")), FieldPart("note", "hello"))

	p, ok := form.Part("ibanImage")
	require.True(t, ok)
	assert.Equal(t, "iban.png", p.FileName)

	status, err := NewWithRouter(router).PostMultipart("/real-owners", form, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "application/json", rec.OwnerType)
	assert.JSONEq(t, `{"fullName":"Sara Ahmed"}`, rec.Owner)
	assert.Equal(t, "iban.png", rec.ImageName)
	assert.Equal(t, "png-bytes", rec.Image)
	assert.Equal(t, "hello", rec.Placeholder)
}

func TestCollection(t *testing.T) {
	c := NewWithRouter(echoRouter())

	col := c.Collection("real-owners/properties")
	assert.Equal(t, "/real-owners/properties", col.CollectionPath())
	assert.Equal(t, "/real-owners/properties/12", col.Item(12).Path())

	assert.Equal(t, "/real-owners/properties", col.WithIDParameter("realOwnerId", 0).CollectionPath())
	withOwner := col.WithIDParameter("realOwnerId", 3)
	assert.Equal(t, "/real-owners/properties?realOwnerId=3", withOwner.CollectionPath())
	// parameters are copied, not shared
	_ = withOwner.WithParameter("x", "y")
	assert.Equal(t, "/real-owners/properties?realOwnerId=3", withOwner.CollectionPath())

	items := c.Collection("/items/")
	var got map[string]string
	_, err := items.WithParameter("region_id", "4").List(&got)
	require.NoError(t, err)
	assert.Equal(t, "region_id=4", got["query"])

	_, err = items.Item(9).Update(map[string]int{"a": 1}, &got)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got["method"])
	assert.Equal(t, "/items/9", got["path"])

	_, err = items.Item(9).Read(&got)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got["method"])
}
