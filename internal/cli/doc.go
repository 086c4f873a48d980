// Package cli implements identityctl, the operator tool for the identity
// database.
//
// Commands:
//   - create: create an account, optionally with roles
//   - token: authenticate an account and print a fresh token pair
//
// Passwords are read from the terminal without echo, or as a single line
// from stdin when it is not a terminal.
package cli
