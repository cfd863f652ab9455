package dto

import "time"

type GetHealthCommand struct{}

type HealthOutput struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type GetOpenAPISpecQuery struct{}

type OpenAPISpecOutput struct {
	Content     []byte
	ContentType string
	ETag        string
}

type InitializePersistenceCommand struct {
	ReadinessTimeout       time.Duration
	ReadinessRetryInterval time.Duration
}
