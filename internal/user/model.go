// Package user is the read side of the account system. Registration,
// credential handling and email validation live in the auth collaborator;
// this package only looks users up.
package user

import "time"

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	Validated bool      `json:"validated"`
	CreatedAt time.Time `json:"createdAt"`
}
