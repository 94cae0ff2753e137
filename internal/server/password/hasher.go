// Package password defines the one-way password hashing contract injected
// into the authentication services, plus a bcrypt implementation.
package password

// Hasher hashes plaintext passwords and verifies candidates against stored
// hashes. The algorithm choice is an implementation detail of the concrete
// Hasher; callers only see opaque hash strings.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}
