package models

import "time"

type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the wire shape of POST /chat. Image carries a base64 PNG
// and is null when the query produced no chart. Agent failures are reported
// inside Text with an empty Code, not as an HTTP error.
type ChatResponse struct {
	Text  string  `json:"text"`
	Image *string `json:"image"`
	Code  string  `json:"code"`
}

type ChatRecord struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Code      string    `json:"code"`
	HasChart  bool      `json:"has_chart"`
	ChartKey  string    `json:"chart_key,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

type HealthResponse struct {
	Status         string   `json:"status"`
	DatasetRows    int      `json:"dataset_rows"`
	DatasetColumns []string `json:"dataset_columns"`
}
