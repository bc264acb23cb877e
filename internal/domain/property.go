package domain

// Property is the read model of a listed property. The catalog itself is
// owned by a collaborating service; the engine only resolves owner, title,
// location and price.
type Property struct {
	ID       string   `json:"id"`
	OwnerID  string   `json:"owner_id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    int64    `json:"price"` // KES per night / per stay
	Images   []string `json:"images,omitempty"`
}
