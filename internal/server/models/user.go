// Package models defines the records persisted by the credential store.
package models

import "github.com/dmitrijs2005/credstore/internal/common"

// UserRecord is one row of the users table.
type UserRecord struct {
	Username     string
	DisplayName  *string
	Email        string
	PasswordHash []byte
	Salt         []byte
	Iterations   int
}

// Clone returns a deep copy of r.
func (r *UserRecord) Clone() *UserRecord {
	c := *r
	if r.DisplayName != nil {
		name := *r.DisplayName
		c.DisplayName = &name
	}
	c.PasswordHash = append([]byte(nil), r.PasswordHash...)
	c.Salt = append([]byte(nil), r.Salt...)
	return &c
}

// UserPatch lists the fields an edit changes. Unset fields keep their
// stored value; DisplayName set to nil clears the column.
type UserPatch struct {
	Username    common.Optional[string]
	DisplayName common.Optional[*string]
	Email       common.Optional[string]
	Password    common.Optional[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return !p.Username.Set && !p.DisplayName.Set && !p.Email.Set && !p.Password.Set
}
