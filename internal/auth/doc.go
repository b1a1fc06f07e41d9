// Package auth provides authentication middleware for the enginewatch server.
//
// APIKeyMiddleware(mode, header, key) returns standard net/http middleware
// that validates the API key from the named request header.
//
// When mode != "apikey" or key == "", all requests pass through (useful for
// bench runs with auth disabled). When the key is incorrect or absent the
// middleware replies 401 without invoking the wrapped handler.
package auth
