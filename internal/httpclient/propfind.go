package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// PropfindResponse holds the per-resource properties of a PROPFIND
// multistatus response, keyed by href.
type PropfindResponse struct {
	Resources map[string]ResourceProps
}

// ResourceProps is the subset of WebDAV/CalDAV properties this tool asks for.
type ResourceProps struct {
	IsCalendar           bool
	DisplayName          string
	Etag                 string
	CurrentUserPrincipal string
	CalendarHomeSet      string
}

// caldavProps lists the requestable properties living in the CalDAV
// namespace rather than DAV:.
var caldavProps = map[string]bool{
	"calendar-home-set": true,
}

// buildPropfindXML builds the PROPFIND request body for the given property
// names.
func buildPropfindXML(props ...string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	propfind := doc.CreateElement("d:propfind")
	propfind.CreateAttr("xmlns:d", "DAV:")
	propfind.CreateAttr("xmlns:c", "urn:ietf:params:xml:ns:caldav")
	prop := propfind.CreateElement("d:prop")
	for _, p := range props {
		prefix := "d:"
		if caldavProps[p] {
			prefix = "c:"
		}
		prop.CreateElement(prefix + p)
	}
	return doc.WriteToBytes()
}

// parsePropfindResponse parses a multistatus body into per-href properties.
// Only propstat blocks with a 200 status are considered.
func parsePropfindResponse(body io.Reader) (*PropfindResponse, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("failed to parse multistatus: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return nil, fmt.Errorf("unexpected root element in PROPFIND response")
	}

	out := &PropfindResponse{Resources: make(map[string]ResourceProps)}
	for _, resp := range root.SelectElements("response") {
		hrefElem := resp.SelectElement("href")
		if hrefElem == nil {
			continue
		}
		href := strings.TrimSpace(hrefElem.Text())

		var props ResourceProps
		for _, ps := range resp.SelectElements("propstat") {
			status := ps.SelectElement("status")
			if status == nil || !strings.Contains(status.Text(), "200") {
				continue
			}
			prop := ps.SelectElement("prop")
			if prop == nil {
				continue
			}
			if rt := prop.SelectElement("resourcetype"); rt != nil && rt.SelectElement("calendar") != nil {
				props.IsCalendar = true
			}
			if dn := prop.SelectElement("displayname"); dn != nil {
				props.DisplayName = dn.Text()
			}
			if et := prop.SelectElement("getetag"); et != nil {
				props.Etag = et.Text()
			}
			if cup := prop.SelectElement("current-user-principal"); cup != nil {
				if h := cup.SelectElement("href"); h != nil {
					props.CurrentUserPrincipal = strings.TrimSpace(h.Text())
				}
			}
			if chs := prop.SelectElement("calendar-home-set"); chs != nil {
				if h := chs.SelectElement("href"); h != nil {
					props.CalendarHomeSet = strings.TrimSpace(h.Text())
				}
			}
		}
		out.Resources[href] = props
	}
	return out, nil
}

// DoPROPFIND performs a PROPFIND request for the named properties.
func (w *wrapper) DoPROPFIND(ctx context.Context, urlStr string, depth int, props ...string) (*PropfindResponse, error) {
	w.logger.Debug("starting PROPFIND request", "url", urlStr, "depth", depth, "properties", props)

	body, err := buildPropfindXML(props...)
	if err != nil {
		return nil, fmt.Errorf("failed to build PROPFIND body: %w", err)
	}

	resolvedURL, err := w.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create PROPFIND request: %w", err)
	}
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PROPFIND request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, urlStr)
	}
	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PROPFIND failed with status %d", resp.StatusCode)
	}

	parsed, err := parsePropfindResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("PROPFIND request complete", "resources", len(parsed.Resources))
	return parsed, nil
}
