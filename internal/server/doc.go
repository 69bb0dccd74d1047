// Package server wires the gatekeeper HTTP API: the public /auth and
// /health endpoints, and protected routes composed with auth.Protect
// carrying each route's required scopes. User administration requires
// root or admin; the blacklist additionally admits security_officer;
// logout only requires a valid session.
package server
