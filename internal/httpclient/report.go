package httpclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// ReportResponse holds the calendar objects returned by a REPORT request.
type ReportResponse struct {
	Objects []ObjectData
}

// ObjectData is one calendar object from a multistatus response.
type ObjectData struct {
	Href         string
	Etag         string
	CalendarData string
}

// parseReportResponse extracts hrefs, etags and calendar data from a
// multistatus body.
func parseReportResponse(body io.Reader) (*ReportResponse, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("failed to parse multistatus: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return nil, fmt.Errorf("unexpected root element in REPORT response")
	}

	out := &ReportResponse{}
	for _, resp := range root.SelectElements("response") {
		hrefElem := resp.SelectElement("href")
		if hrefElem == nil {
			continue
		}
		obj := ObjectData{Href: strings.TrimSpace(hrefElem.Text())}

		for _, ps := range resp.SelectElements("propstat") {
			status := ps.SelectElement("status")
			if status == nil || !strings.Contains(status.Text(), "200") {
				continue
			}
			prop := ps.SelectElement("prop")
			if prop == nil {
				continue
			}
			if et := prop.SelectElement("getetag"); et != nil {
				obj.Etag = et.Text()
			}
			if cd := prop.SelectElement("calendar-data"); cd != nil {
				obj.CalendarData = cd.Text()
			}
		}
		out.Objects = append(out.Objects, obj)
	}
	return out, nil
}

// DoREPORT executes a CalDAV REPORT request. The query is marshalled to XML
// with encoding/xml; callers provide the calendar-query structure.
func (w *wrapper) DoREPORT(ctx context.Context, urlStr string, depth int, query any) (*ReportResponse, error) {
	w.logger.Debug("starting REPORT request", "url", urlStr, "depth", depth)

	queryXML, err := xml.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal REPORT query: %w", err)
	}

	resolvedURL, err := w.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "REPORT", resolvedURL.String(), bytes.NewReader(queryXML))
	if err != nil {
		return nil, fmt.Errorf("failed to create REPORT request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("REPORT request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, urlStr)
	}
	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("REPORT failed with status %d", resp.StatusCode)
	}

	parsed, err := parseReportResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("REPORT request complete", "objects", len(parsed.Objects))
	return parsed, nil
}
