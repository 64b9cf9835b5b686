package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPTransportReturnsRawStatusAndBody(t *testing.T) {
	var gotAuth, gotReqID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(RequestIDHeader)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/x",
		Header: http.Header{"Authorization": []string{"Bearer t"}},
		Body:   []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.Status != http.StatusTeapot || resp.Body != "not json" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gotAuth != "Bearer t" || gotBody != `{"a":1}` {
		t.Fatalf("request not forwarded: auth=%q body=%q", gotAuth, gotBody)
	}
	if gotReqID == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestHTTPTransportConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPTransport().Do(context.Background(), Request{Method: http.MethodGet, URL: url})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.Method != http.MethodGet {
		t.Fatalf("expected *NetworkError with method, got %v", err)
	}
}

func TestHTTPTransportTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tr := NewHTTPTransport(WithTimeout(50 * time.Millisecond))
	_, err := tr.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork on timeout, got %v", err)
	}
}

func TestHTTPTransportBodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(WithMaxBodyBytes(16)).Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, ErrBodyTooLarge) || !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected body cap network error, got %v", err)
	}
}

func TestTransportFuncAdapter(t *testing.T) {
	var calls int
	f := Func(func(_ context.Context, req Request) (Response, error) {
		calls++
		return Response{Status: 204, Body: req.URL}, nil
	})
	resp, err := f.Do(context.Background(), Request{URL: "u"})
	if err != nil || resp.Body != "u" || calls != 1 {
		t.Fatalf("unexpected adapter result %+v %v calls=%d", resp, err, calls)
	}
}
