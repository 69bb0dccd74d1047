// Package store provides SQLite-backed persistence for gatekeeper.
//
// The store holds five tables: system_users (employee accounts with
// hashed credentials and a soft-delete flag), roles (immutable scope
// reference data), system_user_roles (assignment join table), sessions
// (per-login crypto metadata and expiry), and black_list (barred
// visitors), plus an audit_log of auth and admin actions.
//
// All timestamps are stored as UTC RFC3339 text. Sessions reference
// users with ON DELETE SET NULL so a deleted account invalidates its
// sessions at validation time without destroying the rows.
package store
