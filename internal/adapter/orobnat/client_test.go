package orobnat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydromet/orobnat-etl/internal/adapter/orobnat"
	"github.com/hydromet/orobnat-etl/internal/config"
	"github.com/hydromet/orobnat-etl/internal/domain"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OrobnatBaseURL:   baseURL,
		OrobnatMenuURL:   baseURL + "/orobnat/afficherPage.do",
		OrobnatSearchURL: baseURL + "/orobnat/rechercherResultatQualite.do",
		OrobnatRegionID:  "11",
		OrobnatUsage:     "AEP",
		OrobnatPosition:  "0",
		WarmupTimeout:    5 * time.Second,
		SearchTimeout:    5 * time.Second,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPayload() domain.SearchPayload {
	return domain.BuildSearchPayload(
		domain.Municipality{WaterCode: "095000386_095", CommuneCode: "95176"},
		domain.SearchDefaults{RegionID: "11", Usage: "AEP", Position: "0"},
	)
}

func TestSessionSubmit(t *testing.T) {
	t.Run("posts the form and returns the body", func(t *testing.T) {
		var gotForm map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/orobnat/rechercherResultatQualite.do", r.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))

			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{}
			for k := range r.PostForm {
				gotForm[k] = r.PostForm.Get(k)
			}
			io.WriteString(w, "<html>résultats</html>")
		}))
		defer srv.Close()

		client := orobnat.NewClient(testConfig(srv.URL), discardLogger())
		sess, err := client.Open()
		require.NoError(t, err)

		body, err := sess.Submit(context.Background(), testPayload())
		require.NoError(t, err)
		assert.Equal(t, "<html>résultats</html>", body)

		assert.Equal(t, map[string]string{
			"methode":            "rechercher",
			"idRegion":           "11",
			"usd":                "AEP",
			"posPLV":             "0",
			"departement":        "095",
			"communeDepartement": "95176",
			"reseau":             "095000386_095",
		}, gotForm)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "indisponible", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := orobnat.NewClient(testConfig(srv.URL), discardLogger())
		sess, err := client.Open()
		require.NoError(t, err)

		_, err = sess.Submit(context.Background(), testPayload())
		require.Error(t, err)

		var terr *orobnat.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
		assert.Contains(t, terr.Error(), "unexpected status 500")
	})

	t.Run("connection failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // refuse connections

		client := orobnat.NewClient(testConfig(srv.URL), discardLogger())
		sess, err := client.Open()
		require.NoError(t, err)

		_, err = sess.Submit(context.Background(), testPayload())
		require.Error(t, err)

		var terr *orobnat.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Zero(t, terr.StatusCode)
		assert.Error(t, errors.Unwrap(terr))
	})
}

func TestSessionWarmup(t *testing.T) {
	t.Run("sends the menu request", func(t *testing.T) {
		var gotQuery map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/orobnat/afficherPage.do", r.URL.Path)
			gotQuery = map[string]string{}
			for k := range r.URL.Query() {
				gotQuery[k] = r.URL.Query().Get(k)
			}
		}))
		defer srv.Close()

		client := orobnat.NewClient(testConfig(srv.URL), discardLogger())
		sess, err := client.Open()
		require.NoError(t, err)

		sess.Warmup(context.Background())

		assert.Equal(t, map[string]string{
			"methode":  "menu",
			"usd":      "AEP",
			"idRegion": "11",
		}, gotQuery)
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		client := orobnat.NewClient(testConfig(srv.URL), discardLogger())
		sess, err := client.Open()
		require.NoError(t, err)

		// Must not panic or surface the error; the search still proceeds.
		sess.Warmup(context.Background())
	})
}

func TestSessionCookies(t *testing.T) {
	var searchCookies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orobnat/afficherPage.do":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
		case "/orobnat/rechercherResultatQualite.do":
			if c, err := r.Cookie("JSESSIONID"); err == nil {
				searchCookies = append(searchCookies, c.Value)
			} else {
				searchCookies = append(searchCookies, "")
			}
			io.WriteString(w, "<html></html>")
		}
	}))
	defer srv.Close()

	client := orobnat.NewClient(testConfig(srv.URL), discardLogger())

	// A warmed-up session carries the cookie into the search.
	sess, err := client.Open()
	require.NoError(t, err)
	sess.Warmup(context.Background())
	_, err = sess.Submit(context.Background(), testPayload())
	require.NoError(t, err)

	// A second session starts with an empty jar: no warmup, no cookie.
	fresh, err := client.Open()
	require.NoError(t, err)
	_, err = fresh.Submit(context.Background(), testPayload())
	require.NoError(t, err)

	assert.Equal(t, []string{"abc123", ""}, searchCookies)
}
