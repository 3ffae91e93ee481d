package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, catalogURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"catalog:",
		"  base_url: " + catalogURL,
		"  site_url: https://www.valuebooks.jp",
		"cascade:",
		"  step_delay: 0s",
		"cache:",
		"  ttl: 0s",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func fakeCatalog(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNormalizeCommand(t *testing.T) {
	out, err := runCLI(t, "normalize", "ＡＢＣ ・def")
	require.NoError(t, err)

	var results []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "abcdef", results[0]["key"])
}

func TestSimilarityCommand(t *testing.T) {
	out, err := runCLI(t, "similarity", "鬼滅の刃", "鬼滅の刃 1")
	require.NoError(t, err)

	var result struct {
		Score     float64 `json:"score"`
		Threshold float64 `json:"threshold"`
		Accepted  bool    `json:"accepted"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Accepted)
	assert.Greater(t, result.Score, 0.35)
	assert.Equal(t, 0.35, result.Threshold)
}

func TestSimilarityCommand_RequiresTwoArgs(t *testing.T) {
	_, err := runCLI(t, "similarity", "only one")
	assert.Error(t, err)
}

func TestReduceCommand(t *testing.T) {
	out, err := runCLI(t, "reduce", "--author", "吾峠呼世晴", "鬼滅の刃 1 (ジャンプコミックス)")
	require.NoError(t, err)

	var result struct {
		Title struct {
			Cleaned string `json:"cleaned"`
		} `json:"title"`
		Queries []struct {
			Keyword string `json:"keyword"`
		} `json:"queries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "鬼滅の刃 1", result.Title.Cleaned)
	require.NotEmpty(t, result.Queries)
	assert.Equal(t, `"鬼滅の刃 1" 吾峠呼世晴`, result.Queries[0].Keyword)
}

func TestResolveCommand(t *testing.T) {
	server := fakeCatalog(t, `{"items":[{"title":"鬼滅の刃 1","min_sell_price":380,"vs_catalog_id":"0012345678"}]}`)
	configPath := writeTestConfig(t, server.URL)

	out, err := runCLI(t, "--config", configPath, "resolve", "--title", "鬼滅の刃 1 (ジャンプコミックス)", "--author", "吾峠呼世晴")
	require.NoError(t, err)

	var n struct {
		Kind    string `json:"kind"`
		Matched struct {
			PriceText string `json:"priceText"`
			Link      string `json:"link"`
		} `json:"matched"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "matched", n.Kind)
	assert.Equal(t, "380円", n.Matched.PriceText)
	assert.Equal(t, "https://www.valuebooks.jp/bp/0012345678", n.Matched.Link)
}

func TestResolveCommand_RequiresTitle(t *testing.T) {
	server := fakeCatalog(t, `{"items":[]}`)
	configPath := writeTestConfig(t, server.URL)

	_, err := runCLI(t, "--config", configPath, "resolve")
	assert.ErrorContains(t, err, "--title")
}

func TestPageCommand_ParseOnly(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	html := `<span id="productTitle"> 夜と霧 新版 </span><div id="bylineInfo"><a class="a-link-normal" href="#">V.E.フランクル</a> (著)</div>`
	require.NoError(t, os.WriteFile(page, []byte(html), 0o644))

	server := fakeCatalog(t, `{"items":[]}`)
	configPath := writeTestConfig(t, server.URL)

	out, err := runCLI(t, "--config", configPath, "page", "--parse-only", page)
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "夜と霧 新版", info["title"])
	assert.Equal(t, "V.E.フランクル", info["author"])
}

func TestPageCommand_NoMatch(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<span id="productTitle">存在しない本</span>`), 0o644))

	server := fakeCatalog(t, `{"items":[]}`)
	configPath := writeTestConfig(t, server.URL)

	out, err := runCLI(t, "--config", configPath, "page", page)
	require.NoError(t, err)

	var n struct {
		Kind    string `json:"kind"`
		NoMatch struct {
			SearchSeed string `json:"searchSeed"`
		} `json:"noMatch"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "no_match", n.Kind)
	assert.Equal(t, "存在しない本", n.NoMatch.SearchSeed)
}
