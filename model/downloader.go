package model

import "context"

// Downloader turns user input (a URL or an id) into a fully loaded Work.
type Downloader interface {
	CanHandleURL(url string) bool
	GetWork(ctx context.Context, input string) (*Work, error)
}
