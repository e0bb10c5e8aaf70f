package user

// SetVerifier replaces the password check used by Authenticate
func SetVerifier(d *Directory, verify func(plainPassword, encodedHash string) bool) {
	d.verify = verify
}
