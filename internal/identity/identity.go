// Package identity authenticates custody operators.
//
// It provides:
//   - OperatorIssuer  issues and verifies HS256 operator bearer tokens
//   - RequireOperator Gin middleware guarding mutating routes by scope
package identity
