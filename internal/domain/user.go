package domain

// User is the read model of an account, used to resolve requester contact
// details for notifications.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
