package common

// AccessTokenHeaderName is the HTTP header used to carry the access token on
// outbound requests.
const AccessTokenHeaderName = "Authorization"

// BearerPrefix prefixes the access token in the Authorization header.
const BearerPrefix = "Bearer "
