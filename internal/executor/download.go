package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/zeebo/bencode"

	"github.com/ddonindia/lodestarr/internal/extractor"
	"github.com/ddonindia/lodestarr/internal/filter"
	"github.com/ddonindia/lodestarr/internal/template"
)

// Download resolves targetURL through the definition's multi-step
// download selectors (if any), fetches the final URL, and sanity-checks
// .torrent payloads against the bencode grammar before returning them.
func (e *Executor) Download(ctx context.Context, targetURL string) ([]byte, error) {
	finalURL := targetURL

	if e.def.Download != nil && len(e.def.Download.Selectors) > 0 {
		resolved, err := e.resolveDownloadIndirection(ctx, targetURL)
		if err != nil {
			return nil, newError(KindDownload, targetURL, err)
		}
		finalURL = resolved
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, newError(KindDownload, finalURL, err)
	}
	setBrowserHeaders(req, e.opts.userAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, finalURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(KindProtocol, finalURL, fmt.Errorf("http status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, finalURL, err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "x-bittorrent") {
		var dummy any
		if err := bencode.DecodeBytes(body, &dummy); err != nil {
			return nil, newError(KindProtocol, finalURL, fmt.Errorf("response is not a valid torrent file: %w", err))
		}
	}

	return body, nil
}

func (e *Executor) resolveDownloadIndirection(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	setBrowserHeaders(req, e.opts.userAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	tctx := template.NewContext()
	for _, sel := range e.def.Download.Selectors {
		rows := extractor.LocateHTMLRows(doc.Selection, sel.Selector)
		if len(rows) == 0 {
			continue
		}
		first := rows[0]
		var value string
		if sel.Attribute != "" {
			value, _ = first.Attr(sel.Attribute)
		} else {
			value = strings.TrimSpace(first.Text())
		}
		if value == "" {
			continue
		}
		value = filter.Apply(value, toExecFilters(sel.Filters, tctx))
		if value == "" {
			continue
		}
		return resolvePath(pageURL, value), nil
	}
	return "", fmt.Errorf("no download selector yielded a target")
}
