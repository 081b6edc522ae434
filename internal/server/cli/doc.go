// Package cli implements credstore, the operator command line for the
// credential store.
//
// Usage:
//
//	credstore <command> [flags]
//
// Commands:
//
//	migrate                                   apply schema migrations
//	add    -username U [-name N] -email E     create a user (password prompted)
//	auth   -username U                        check a password
//	show   -username U                        print a user record
//	edit   -username U [-new-username U2] [-name N | -clear-name] [-email E] [-password]
//	delete -username U                        remove a user
//
// Passwords are read from the terminal without echo, or as one line from
// standard input when -password-stdin is given. Database flags (-driver,
// -path, -host, ...) and -c/-config may appear anywhere on the line.
package cli
