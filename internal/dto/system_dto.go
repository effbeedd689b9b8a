package dto

import (
	"time"
)

const APIVersion = "1.0.0"

type StorageStats struct {
	NoteCount  int64 `json:"noteCount"`
	ImageCount int64 `json:"imageCount"`
	TotalSize  int64 `json:"totalSize"`
}

type StatsResponse struct {
	StorageStats
	Timestamp time.Time `json:"timestamp"`
}

type DatabaseHealth struct {
	Connected bool          `json:"connected"`
	Backend   string        `json:"backend,omitempty"`
	Stats     *StorageStats `json:"stats,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Database  DatabaseHealth `json:"database"`
	Version   string         `json:"version"`
}

type ClearRequest struct {
	Confirm string `json:"confirm" validate:"required,eq=true"`
}

type ClearResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
