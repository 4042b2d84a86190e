package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
)

var pdfMagic = []byte("%PDF")

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// Download fetches one discovered document into the country's directory
// under DocumentsDir. Downloads are idempotent: an existing local file is
// kept as-is. The payload must begin with the PDF magic header; anything
// else is rejected and removed regardless of the served Content-Type.
func (h *Harvester) Download(ctx context.Context, disc Discovery) (string, error) {
	countryDir := filepath.Join(h.cfg.DocumentsDir, disc.Country)
	if err := os.MkdirAll(countryDir, 0o755); err != nil {
		return "", fmt.Errorf("create country dir: %w", err)
	}

	safeName := unsafeFilenameChars.ReplaceAllString(disc.Filename, "_")
	localPath := filepath.Join(countryDir, safeName)

	if _, err := os.Stat(localPath); err == nil {
		h.log.Info("document already exists", "path", localPath)
		return localPath, nil
	}

	h.log.Info("downloading", "url", disc.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, disc.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	resp, err := h.downloadClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", disc.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", disc.URL, resp.StatusCode)
	}

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		return "", fmt.Errorf("read payload head: %w", err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return "", fmt.Errorf("url %s does not serve PDF content", disc.URL)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}

	if _, err := out.Write(head); err == nil {
		_, err = io.Copy(out, resp.Body)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("write local file: %w", err)
	}

	h.log.Info("downloaded", "path", localPath)
	return localPath, nil
}

// HarvestCountry discovers and downloads one country's documents. A
// failure on any single document is collected and the loop continues.
func (h *Harvester) HarvestCountry(ctx context.Context, country string) (*CountrySummary, error) {
	discovered, err := h.Discover(ctx, country)
	if err != nil {
		return nil, err
	}

	profile := h.rules.Sources[country]
	summary := &CountrySummary{
		Country:    country,
		TSO:        profile.Name,
		Discovered: len(discovered),
	}

	for i, disc := range discovered {
		if i > 0 {
			h.sleep(h.cfg.DocumentDelay)
		}
		localPath, err := h.Download(ctx, disc)
		if err != nil {
			h.log.Error("document download failed", "country", country, "filename", disc.Filename, "error", err)
			summary.Failed++
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}
		summary.Downloaded++
		summary.LocalPaths = append(summary.LocalPaths, localPath)
	}

	h.log.Info("harvest complete", "country", country,
		"discovered", summary.Discovered, "downloaded", summary.Downloaded, "failed", summary.Failed)
	return summary, nil
}

// HarvestAll runs HarvestCountry for every configured source. One
// country's failure never aborts the others.
func (h *Harvester) HarvestAll(ctx context.Context) []*CountrySummary {
	var summaries []*CountrySummary
	for _, country := range h.rules.SourceCountries() {
		summary, err := h.HarvestCountry(ctx, country)
		if err != nil {
			h.log.Error("country harvest failed", "country", country, "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
