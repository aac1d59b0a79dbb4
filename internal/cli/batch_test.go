package cli_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RobertsBatars/yt-transcribe-ai/internal/cli"
	"github.com/RobertsBatars/yt-transcribe-ai/internal/download"
)

func writeLinksFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// downloaderFor returns a fetcher that writes a small MP3 per URL and
// titles it from the given map.
func downloaderFor(t *testing.T, titles map[string]string) *fakeFetcher {
	t.Helper()
	dir := t.TempDir()
	n := 0
	return &fakeFetcher{fetch: func(_ context.Context, url string) (download.Audio, error) {
		title, ok := titles[url]
		if !ok {
			return download.Audio{}, fmt.Errorf("%w: %s", download.ErrDownloadFailed, url)
		}
		n++
		path := filepath.Join(dir, fmt.Sprintf("dl-%d.mp3", n))
		if err := os.WriteFile(path, []byte("audio"), 0600); err != nil {
			return download.Audio{}, err
		}
		return download.Audio{Path: path, Title: title}, nil
	}}
}

func TestBatchCmd(t *testing.T) {
	t.Parallel()

	t.Run("transcribes every url into titled files", func(t *testing.T) {
		t.Parallel()

		links := writeLinksFile(t, `
# my watch-later queue
https://youtube.com/watch?v=one

https://youtube.com/watch?v=two
not a url, ignored
`)
		dl := downloaderFor(t, map[string]string{
			"https://youtube.com/watch?v=one": "First Talk",
			"https://youtube.com/watch?v=two": "Second: The Sequel?",
		})

		cfg := defaultTestConfig()
		cfg.OutputDir = t.TempDir()
		tr := &stubTranscriber{text: "transcript"}
		env, stderr := testEnv(t, tr, cfg,
			cli.WithDownloaderFactory(&fakeDownloaderFactory{dl: dl}))

		if err := execute(cli.BatchCmd(env), links); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		for _, name := range []string{"First Talk.txt", "Second_ The Sequel.txt"} {
			path := filepath.Join(cfg.OutputDir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Errorf("transcript %q missing: %v", name, err)
				continue
			}
			if string(data) != "transcript" {
				t.Errorf("%q content = %q, want %q", name, data, "transcript")
			}
		}

		if len(tr.paths) != 2 {
			t.Errorf("transcriber saw %d assets, want 2", len(tr.paths))
		}
		for _, p := range tr.paths {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("downloaded file %s was not removed", p)
			}
		}
		if !strings.Contains(stderr.String(), "Done: 2/2") {
			t.Errorf("stderr %q missing summary", stderr.String())
		}
	})

	t.Run("a failed download does not stop the batch", func(t *testing.T) {
		t.Parallel()

		links := writeLinksFile(t, "https://youtube.com/watch?v=bad\nhttps://youtube.com/watch?v=good\n")
		dl := downloaderFor(t, map[string]string{
			"https://youtube.com/watch?v=good": "Survivor",
		})

		cfg := defaultTestConfig()
		cfg.OutputDir = t.TempDir()
		env, stderr := testEnv(t, &stubTranscriber{text: "ok"}, cfg,
			cli.WithDownloaderFactory(&fakeDownloaderFactory{dl: dl}))

		if err := execute(cli.BatchCmd(env), links); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Survivor.txt")); err != nil {
			t.Errorf("surviving transcript missing: %v", err)
		}
		out := stderr.String()
		if !strings.Contains(out, "Error: https://youtube.com/watch?v=bad") {
			t.Errorf("stderr %q missing download error line", out)
		}
		if !strings.Contains(out, "Done: 1/2") {
			t.Errorf("stderr %q missing summary", out)
		}
	})

	t.Run("missing links file", func(t *testing.T) {
		t.Parallel()

		env, _ := testEnv(t, &stubTranscriber{}, defaultTestConfig())
		err := execute(cli.BatchCmd(env), filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, cli.ErrFileNotFound) {
			t.Errorf("Execute() error = %v, want ErrFileNotFound", err)
		}
	})

	t.Run("links file without urls", func(t *testing.T) {
		t.Parallel()

		links := writeLinksFile(t, "# only comments\n\nplain text\n")
		env, _ := testEnv(t, &stubTranscriber{}, defaultTestConfig())

		err := execute(cli.BatchCmd(env), links)
		if !errors.Is(err, cli.ErrNoURLs) {
			t.Errorf("Execute() error = %v, want ErrNoURLs", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()

		links := writeLinksFile(t, "https://youtube.com/watch?v=one\n")
		env, _ := testEnv(t, &stubTranscriber{}, defaultTestConfig(),
			cli.WithGetenv(func(string) string { return "" }))

		err := execute(cli.BatchCmd(env), links)
		if !errors.Is(err, cli.ErrAPIKeyMissing) {
			t.Errorf("Execute() error = %v, want ErrAPIKeyMissing", err)
		}
	})
}

func TestReadLinks(t *testing.T) {
	t.Parallel()

	t.Run("keeps only http urls", func(t *testing.T) {
		t.Parallel()

		path := writeLinksFile(t, `
# queue
https://youtube.com/a
  http://youtube.com/b
ftp://elsewhere/c
random note
`)
		urls, err := cli.ReadLinks(path)
		if err != nil {
			t.Fatalf("ReadLinks() error = %v", err)
		}
		want := []string{"https://youtube.com/a", "http://youtube.com/b"}
		if len(urls) != len(want) {
			t.Fatalf("ReadLinks() = %v, want %v", urls, want)
		}
		for i := range want {
			if urls[i] != want[i] {
				t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
			}
		}
	})

	t.Run("empty file yields no urls", func(t *testing.T) {
		t.Parallel()

		urls, err := cli.ReadLinks(writeLinksFile(t, ""))
		if err != nil {
			t.Fatalf("ReadLinks() error = %v", err)
		}
		if len(urls) != 0 {
			t.Errorf("ReadLinks() = %v, want empty", urls)
		}
	})
}
