package state

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"FareSentinel/internal/snapshot"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// GitHubStore keeps the snapshot as a file in a GitHub repository through
// the contents API, so scheduled CI runs can share state.
type GitHubStore struct {
	BaseURL string
	Repo    string // owner/name
	Path    string
	Branch  string
	Token   string
	Client  *http.Client

	now func() time.Time

	mu  sync.Mutex
	sha string
}

func NewGitHubStore(repo, path, token string) *GitHubStore {
	if path == "" {
		path = "state.json"
	}
	return &GitHubStore{
		BaseURL: DefaultGitHubAPI,
		Repo:    repo,
		Path:    path,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

func (g *GitHubStore) Name() string { return "github:" + g.Repo + "/" + g.Path }

func (g *GitHubStore) url() string {
	u := fmt.Sprintf("%s/repos/%s/contents/%s", strings.TrimRight(g.BaseURL, "/"), g.Repo, g.Path)
	if g.Branch != "" {
		u += "?ref=" + g.Branch
	}
	return u
}

func (g *GitHubStore) do(ctx context.Context, method string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.url(), r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.Client.Do(req)
}

type contentsFile struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Load fetches the snapshot file and remembers its sha for the next Save.
// A missing file means no previous run.
func (g *GitHubStore) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	resp, err := g.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("github get contents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		g.sha = ""
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github get contents: status %d, body: %s", resp.StatusCode, string(b))
	}

	var file contentsFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	g.sha = file.SHA
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode state content: %w", err)
	}
	var s snapshot.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &s, nil
}

// Save commits the snapshot, updating the file seen by the last Load.
func (g *GitHubStore) Save(ctx context.Context, s snapshot.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	body := map[string]string{
		"message": "Update flight tracker state " + g.now().UTC().Format("2006-01-02 15:04 UTC"),
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if g.sha != "" {
		body["sha"] = g.sha
	}
	if g.Branch != "" {
		body["branch"] = g.Branch
	}

	resp, err := g.do(ctx, http.MethodPut, body)
	if err != nil {
		return fmt.Errorf("github put contents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github put contents: status %d, body: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Content contentsFile `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Content.SHA != "" {
		g.sha = out.Content.SHA
	}
	return nil
}
