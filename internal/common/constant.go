// Package common contains shared constants and sentinel errors used across
// credstore components.
package common

// AuthDBPasswordEnv is the environment variable carrying the password of the
// database account the store connects with.
const AuthDBPasswordEnv = "AUTHDBPASS"
