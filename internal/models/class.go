package models

// Class is stored under classes/{id}. Teacher is nil until one is assigned.
type Class struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Level     string   `json:"level,omitempty"`
	Teacher   *string  `json:"teacher"`
	Students  []string `json:"students"`
	CreatedAt string   `json:"createdAt"` // RFC3339
	UpdatedAt string   `json:"updatedAt"` // RFC3339
}
