package infra

import "context"

type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Page, error)
}

var _ PageFetcher = (*PageClient)(nil)
