package qaas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bmatcuk/doublestar/v4"
)

// ListPlatformsOptions filters a platform listing server-side.
type ListPlatformsOptions struct {
	// Name filters to platforms with this exact name.
	Name string

	// ProviderName filters to platforms of one backend family provider.
	ProviderName string
}

// ListPlatforms returns the platform catalog, optionally filtered.
func (c *Client) ListPlatforms(ctx context.Context, opts ListPlatformsOptions) ([]Platform, error) {
	query := url.Values{}
	if opts.Name != "" {
		query.Set("name", opts.Name)
	}
	if opts.ProviderName != "" {
		query.Set("providerName", opts.ProviderName)
	}

	var out struct {
		Platforms []Platform `json:"platforms"`
	}
	if err := c.request(ctx, http.MethodGet, "/platforms", query, nil, &out); err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	return out.Platforms, nil
}

// MatchPlatforms filters platforms by a glob pattern against their name.
// Patterns support the usual glob syntax ("aer_simulation_*").
func MatchPlatforms(platforms []Platform, pattern string) ([]Platform, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid platform pattern %q", pattern)
	}

	var matched []Platform
	for _, p := range platforms {
		ok, err := doublestar.Match(pattern, p.Name)
		if err != nil {
			return nil, fmt.Errorf("match platform %q: %w", p.Name, err)
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// FindPlatform resolves a glob pattern to exactly one platform.
//
// Returns ErrPlatformNotFound when nothing matches and
// ErrPlatformAmbiguous when more than one platform does.
func (c *Client) FindPlatform(ctx context.Context, pattern string) (*Platform, error) {
	platforms, err := c.ListPlatforms(ctx, ListPlatformsOptions{})
	if err != nil {
		return nil, err
	}

	matched, err := MatchPlatforms(platforms, pattern)
	if err != nil {
		return nil, err
	}
	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrPlatformNotFound, pattern)
	case 1:
		return &matched[0], nil
	default:
		names := make([]string, len(matched))
		for i, p := range matched {
			names[i] = p.Name
		}
		return nil, fmt.Errorf("%w: %q matched %v", ErrPlatformAmbiguous, pattern, names)
	}
}
