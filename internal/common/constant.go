package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound requests, in "Bearer <token>" form.
const AuthorizationHeaderName = "Authorization"

// RefreshTokenCookieName is the HttpOnly cookie that delivers the refresh
// token to the client on signin and carries it back on renewal.
const RefreshTokenCookieName = "refresh_token"

// DefaultRole is assigned to every newly created account.
const DefaultRole = "user"
