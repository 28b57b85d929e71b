// Package web serves the storefront pages behind a navigation guard.
//
// Every browser client is identified by a cookie and owns one session store,
// the server-side record of who that client is signed in as. The store is
// filled from the product API on the client's first page navigation and is
// afterwards changed only by login, logout, or idle expiry. Page requests pass
// through the guard, which redirects to the login page when the route's
// metadata asks for more than the client's session provides.
package web
