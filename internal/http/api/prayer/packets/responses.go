package packets

// RESPONSES FOR THE PUBLIC PRAYER TIMES ENDPOINTS

// HealthResponse is the liveness payload; it deliberately skips the standard
// success envelope.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
