package store

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

type dnsFailure struct{}

func (dnsFailure) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, &net.DNSError{Err: "no such host", Name: req.URL.Hostname(), IsNotFound: true}
}

func testAPIServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octocat","avatar_url":"https://example.com/o.png","html_url":"https://github.com/octocat","name":"The Octocat","bio":null,"location":"San Francisco","public_repos":8,"followers":3934,"following":9}`)
	})
	mux.HandleFunc("/users/octocat/followers", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"alice","avatar_url":"https://example.com/a.png"}]`)
	})
	mux.HandleFunc("/users/octocat/following", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
