// Copyright 2025 Pileworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package setup

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/pileworks/novelty/corpus"
)

const (
	// DefaultBaseURL is where the Parquet parts of the GitHub split of
	// The Pile are published. The part file name is appended to it.
	DefaultBaseURL = "https://huggingface.co/datasets/andstor/the_pile_github/resolve/main/data/train/Python/"
	// DefaultStagingDir holds downloaded Parquet parts until conversion.
	DefaultStagingDir = "parquet_files"
	// DefaultPartFormat names one Parquet part by its index.
	DefaultPartFormat = "part.%d.parquet"
)

// document is the single corpus column carried over into the JSONL shards.
type document struct {
	Text string `parquet:"text" json:"text"`
}

// Bootstrapper downloads and converts the reference corpus.
type Bootstrapper struct {
	shards     corpus.ShardSet
	client     *http.Client
	baseURL    string
	stagingDir string
	partFormat string
	logger     *slog.Logger
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper) error

// WithHTTPClient sets the download client. Default is http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Bootstrapper) error {
		if client == nil {
			client = http.DefaultClient
		}
		b.client = client
		return nil
	}
}

// WithBaseURL sets the download location. Default is DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(b *Bootstrapper) error {
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
		b.baseURL = baseURL
		return nil
	}
}

// WithStagingDir sets the Parquet staging directory.
// Default is DefaultStagingDir.
func WithStagingDir(dir string) Option {
	return func(b *Bootstrapper) error {
		if dir == "" {
			dir = DefaultStagingDir
		}
		b.stagingDir = dir
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bootstrapper) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBootstrapper creates a bootstrapper that materializes the given
// shard set.
func NewBootstrapper(shards corpus.ShardSet, opts ...Option) (*Bootstrapper, error) {
	b := &Bootstrapper{
		shards:     shards,
		client:     http.DefaultClient,
		baseURL:    DefaultBaseURL,
		stagingDir: DefaultStagingDir,
		partFormat: DefaultPartFormat,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Run downloads every Parquet part, converts each into its JSONL shard and
// removes the staging directory. Existing parts and shards are kept as-is.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if err := os.MkdirAll(b.stagingDir, 0755); err != nil {
		return fmt.Errorf("creating staging directory %s: %w", b.stagingDir, err)
	}
	if err := os.MkdirAll(b.shards.Dir, 0755); err != nil {
		return fmt.Errorf("creating corpus directory %s: %w", b.shards.Dir, err)
	}

	for part := 0; part < b.shards.Count; part++ {
		if err := b.download(ctx, part); err != nil {
			return err
		}
	}
	for part := 0; part < b.shards.Count; part++ {
		if err := b.convert(part); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(b.stagingDir); err != nil {
		return fmt.Errorf("removing staging directory %s: %w", b.stagingDir, err)
	}
	return nil
}

func (b *Bootstrapper) partPath(part int) string {
	return filepath.Join(b.stagingDir, fmt.Sprintf(b.partFormat, part))
}

// download fetches one Parquet part into the staging directory. An
// existing part is trusted and kept, and a part whose shard was already
// converted is not fetched at all.
func (b *Bootstrapper) download(ctx context.Context, part int) error {
	shardPath := filepath.Join(b.shards.Dir, fmt.Sprintf(b.shards.NameFormat, part))
	if _, err := os.Stat(shardPath); err == nil {
		return nil
	}
	path := b.partPath(part)
	if _, err := os.Stat(path); err == nil {
		b.logger.Debug("part already staged", "path", path)
		return nil
	}

	url := b.baseURL + fmt.Sprintf(b.partFormat, part)
	b.logger.Info("downloading corpus part", "part", part, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, url)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		// A truncated part would poison the next resumed run.
		os.Remove(path)
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return f.Sync()
}

// convert turns one staged Parquet part into its JSONL corpus shard. An
// existing shard is kept.
func (b *Bootstrapper) convert(part int) error {
	shardPath := filepath.Join(b.shards.Dir, fmt.Sprintf(b.shards.NameFormat, part))
	if _, err := os.Stat(shardPath); err == nil {
		b.logger.Debug("shard already converted", "path", shardPath)
		return nil
	}

	partPath := b.partPath(part)
	b.logger.Info("converting corpus part", "part", part, "shard", shardPath)

	docs, err := parquet.ReadFile[document](partPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", partPath, err)
	}

	f, err := os.Create(shardPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", shardPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document for %s: %w", shardPath, err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("writing %s: %w", shardPath, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing %s: %w", shardPath, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", shardPath, err)
	}
	return f.Sync()
}
