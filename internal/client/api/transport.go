package api

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// authTransport attaches the cached session token to every outgoing request
// and clears the cache when the server answers 401. Only an explicit server
// verdict invalidates the local session; transport failures leave it intact
// so the client can retry when the server comes back.
type authTransport struct {
	cache *session.Cache
	base  http.RoundTripper
}

func newAuthTransport(cache *session.Cache, base http.RoundTripper) *authTransport {
	return &authTransport{cache: cache, base: base}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.cache.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = t.cache.Clear()
	}
	return resp, nil
}
