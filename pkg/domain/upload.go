package domain

import "time"

// UploadRecord is one line of the tool's upload log.
type UploadRecord struct {
	LocalPath  string    `json:"local_path"`
	RemotePath string    `json:"remote_path"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Blake3Hash string    `json:"blake3_hash"`
	FileSize   uint64    `json:"file_size"`
	Timestamp  time.Time `json:"timestamp"`
}
