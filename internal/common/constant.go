package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// session token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix of the Authorization header value.
const BearerPrefix = "Bearer "
