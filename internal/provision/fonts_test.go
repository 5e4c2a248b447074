package provision

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-dotfiles/internal/config"
	"setup-dotfiles/internal/github"
	"setup-dotfiles/internal/platform"
	"setup-dotfiles/internal/probe"
	"setup-dotfiles/internal/system"
	"setup-dotfiles/internal/testutil/mocks"
)

func fontArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// releaseServer serves one release of ryanoasis/nerd-fonts with a single asset.
func releaseServer(t *testing.T, asset string, body []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/repos/ryanoasis/nerd-fonts/releases/tags/v3.2.1", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(github.Release{
			TagName: "v3.2.1",
			Assets:  []github.Asset{{Name: asset, BrowserDownloadURL: srv.URL + "/download/" + asset}},
		})
	})
	mux.HandleFunc("/download/"+asset, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fontsEnv(t *testing.T, baseURL string) (*Env, *mocks.CommandRunner) {
	t.Helper()
	home := t.TempDir()
	runner := mocks.NewCommandRunner()
	fs := system.NewOSFileSystem()
	client := github.NewClient()
	client.BaseURL = baseURL
	return &Env{
		Platform: platform.Arch,
		Home:     home,
		User:     "dev",
		TempDir:  t.TempDir(),
		Runner:   runner,
		FS:       fs,
		Prober:   probe.New(platform.Arch, fs, runner),
		Releases: client,
	}, runner
}

func jetBrainsMono(asset string) *config.Config {
	return &config.Config{Fonts: []config.Font{{
		Name:      "JetBrainsMono",
		Repo:      "ryanoasis/nerd-fonts",
		Tag:       "v3.2.1",
		Asset:     asset,
		Platforms: config.Platforms{platform.Ubuntu, platform.Arch},
	}}}
}

func TestFontsStep_DownloadsAndExtracts(t *testing.T) {
	t.Parallel()

	const asset = "JetBrainsMono.tar.gz"
	srv := releaseServer(t, asset, fontArchive(t, map[string]string{
		"JetBrainsMonoNerdFont-Regular.ttf": "regular",
		"JetBrainsMonoNerdFont-Bold.ttf":    "bold",
	}))
	env, runner := fontsEnv(t, srv.URL)
	runner.AddResult("fc-cache", []string{"-f"}, exitOK)

	report := runStep(t, fontsStep(jetBrainsMono(asset), env), platform.Arch)

	assert.Equal(t, []string{StepFonts}, recordNames(report.Completed))
	dir := filepath.Join(env.Home, ".local", "share", "fonts", "JetBrainsMono")
	data, err := os.ReadFile(filepath.Join(dir, "JetBrainsMonoNerdFont-Regular.ttf"))
	require.NoError(t, err)
	assert.Equal(t, "regular", string(data))
	assert.NoDirExists(t, dir+".tmp")
	assert.NoFileExists(t, filepath.Join(env.TempDir, asset))
	assert.True(t, runner.Called("fc-cache", "-f"))

	runner.ResetCalls()
	second := runStep(t, fontsStep(jetBrainsMono(asset), env), platform.Arch)
	assert.Equal(t, []string{StepFonts}, recordNames(second.Skipped))
	assert.Empty(t, runner.Calls())
}

func TestFontsStep_MissingAssetWarns(t *testing.T) {
	t.Parallel()

	srv := releaseServer(t, "Hack.tar.gz", nil)
	env, runner := fontsEnv(t, srv.URL)

	report := runStep(t, fontsStep(jetBrainsMono("JetBrainsMono.tar.gz"), env), platform.Arch)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Message, "JetBrainsMono.tar.gz")
	assert.NoDirExists(t, filepath.Join(env.Home, ".local", "share", "fonts", "JetBrainsMono"))
	assert.False(t, runner.Called("fc-cache", "-f"))
}

func TestFontsStep_MacOSUsesCasks(t *testing.T) {
	t.Parallel()

	env, runner, _ := newTestEnv(platform.MacOS)

	report := runStep(t, fontsStep(jetBrainsMono("JetBrainsMono.tar.gz"), env), platform.MacOS)

	assert.Empty(t, report.Completed)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, runner.Calls())
}
