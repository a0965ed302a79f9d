package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleTranslatorJoinsSegments(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "en", q.Get("sl"))
		assert.Equal(t, "gu", q.Get("tl"))
		assert.Equal(t, "Hello world. Bye.", q.Get("q"))
		_, _ = w.Write([]byte(`[[["નમસ્તે દુનિયા. ","Hello world. ",null,null,10],["આવજો.","Bye.",null,null,10]],null,"en"]`))
	}))
	defer server.Close()

	tr := NewGoogleTranslator(server.URL, server.Client())
	out, err := tr.Translate(context.Background(), "  Hello world. Bye. ", "en", "gu")
	require.NoError(t, err)
	require.Equal(t, "નમસ્તે દુનિયા. આવજો.", out)
	require.EqualValues(t, 1, calls.Load())
}

func TestGoogleTranslatorShortCircuits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer server.Close()

	tr := NewGoogleTranslator(server.URL, server.Client())

	out, err := tr.Translate(context.Background(), "   ", "en", "gu")
	require.NoError(t, err)
	require.Equal(t, "", out)

	out, err = tr.Translate(context.Background(), "same", "en", "EN")
	require.NoError(t, err)
	require.Equal(t, "same", out)

	_, err = tr.Translate(context.Background(), strings.Repeat("a", MaxChars), "en", "gu")
	require.Error(t, err)
}

func TestGoogleTranslatorErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "status":
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		case "garbage":
			_, _ = w.Write([]byte(`<html>captcha</html>`))
		default:
			_, _ = w.Write([]byte(`[[],null,"en"]`))
		}
	}))
	defer server.Close()

	tr := NewGoogleTranslator(server.URL, server.Client())
	for _, q := range []string{"status", "garbage", "empty"} {
		_, err := tr.Translate(context.Background(), q, "en", "gu")
		require.Errorf(t, err, "query %s", q)
	}
}
