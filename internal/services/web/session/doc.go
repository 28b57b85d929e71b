// Package session holds the signed-in user for one browser client.
//
// A Store keeps at most one Session. It starts UNINITIALIZED; the first
// navigation calls Ensure, which fetches the identity from the product API
// exactly once and moves the store to READY. Later navigations read the
// cached value without any remote call, so identity changes made outside this
// service are not observed until the store is recreated.
//
// Every fetch failure resolves to "no session"; callers never see an error.
package session
