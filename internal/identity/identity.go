// Package identity holds the signed-in principal and its local persistence.
package identity

// Identity is the signed-in user. Email doubles as the partition key for the
// user's remote task collection.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
