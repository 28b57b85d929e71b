// Package userapi calls the product API's user endpoints on behalf of a
// browser client.
//
// The browser's credential cookies travel in the request context (see
// WithCredentials) and are replayed on every call, so the product API sees
// the same identity the browser holds.
package userapi
