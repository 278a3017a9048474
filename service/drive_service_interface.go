package service

import "context"

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	// UploadQuote stores a quote PDF and returns a link anyone can open
	UploadQuote(ctx context.Context, fileName string, pdf []byte) (string, error)
}
