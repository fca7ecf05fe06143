// Package storage defines the keyed text-blob abstraction over the vault
// and state directories.
package storage

import "time"

// BlobInfo is lightweight metadata for one stored blob.
type BlobInfo struct {
	Key       string    `json:"key"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the keyed blob collaborator. Keys are slash-separated paths
// relative to the provider root; daily notes use "<yyyy-MM-dd>.md" keys.
// Read on an absent key returns an error wrapping os.ErrNotExist.
type Provider interface {
	// List returns metadata for every .md blob under dir (relative to root).
	List(dir string) ([]BlobInfo, error)
	// Read returns the raw bytes stored under key.
	Read(key string) ([]byte, error)
	// Write atomically replaces the blob under key.
	Write(key string, content []byte) error
	// Delete removes the blob under key.
	Delete(key string) error
}
