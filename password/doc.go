// Package password wraps bcrypt hashing behind a small, configuration-
// validated API. The cost factor is fixed at construction; verification
// runs in constant time via bcrypt's own comparison.
package password
