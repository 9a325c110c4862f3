package assets

import "context"

// Loader fetches and decodes the resource behind a locator.
type Loader interface {
	Load(ctx context.Context, locator string) (interface{}, error)
	Unload(asset interface{}) error
}
