// Package auth implements bearer-token verification (C8): parsing and
// validating an HS256 JWT into a Principal. The core only ever validates
// tokens; issuance and rotation are out of scope.
package auth
