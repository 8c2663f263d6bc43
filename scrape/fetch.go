package scrape

import (
	"context"
	"time"
)

// readySelector is waited for after navigation. Pages that never match it
// are still read.
const readySelector = "main, article, h1, h2"

const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultViewportWidth     = 1920
	DefaultViewportHeight    = 1080
)

// Launcher starts a browser session.
type Launcher interface {
	Launch(ctx context.Context) (Page, error)
}

// Page is one browser tab. Close releases the whole session and must be
// called on every path once Launch succeeded.
type Page interface {
	// Navigate loads url and waits until the network is mostly idle.
	Navigate(url string, timeout time.Duration) error
	WaitForSelector(selector string, timeout time.Duration) error
	// Content returns the serialized DOM.
	Content() (string, error)
	Close() error
}
