// Package github resolves and downloads GitHub release assets.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"setup-dotfiles/internal/logger"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Release represents the structure of a GitHub release JSON response.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file of a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Client talks to the GitHub releases API.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// NewClient returns a Client for the public API.
func NewClient() *Client {
	return &Client{HTTP: http.DefaultClient, BaseURL: DefaultBaseURL}
}

// Release fetches release metadata for repo at tag.
func (c *Client) Release(ctx context.Context, repo, tag string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.BaseURL, repo, tag)
	logger.Debug("[DEBUG] Fetching GitHub release from URL: %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching release %s@%s: %w", repo, tag, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub release fetch failed for %s@%s: HTTP status %d", repo, tag, resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release JSON for %s@%s: %w", repo, tag, err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))
	return &release, nil
}

// AssetURL returns the download URL of the named asset in repo's tag release.
func (c *Client) AssetURL(ctx context.Context, repo, tag, name string) (string, error) {
	release, err := c.Release(ctx, repo, tag)
	if err != nil {
		return "", err
	}
	for _, a := range release.Assets {
		if a.Name == name {
			return a.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no asset %q in release %s of %s", name, release.TagName, repo)
}

// Download saves url to destPath, creating parent directories.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to GET %s: HTTP status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	logger.Debug("[DEBUG] Downloaded %s to: %s\n", url, destPath)
	return nil
}
