package geocode

import (
	"bytes"
	"io"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mapchat.dev/geo"
)

var (
	finalURLCoordRe = regexp.MustCompile(`@(-?\d+\.?\d+),(-?\d+\.?\d+)`)
	bodyCoordRe     = regexp.MustCompile(`"center":\{"lat":(-?\d+\.?\d+),"lng":(-?\d+\.?\d+)\}`)
	placePathRe     = regexp.MustCompile(`place/([^/\s@?]+)`)
)

// ResolveShortLink resolves a shortened or coordinate-free maps link to a
// coordinate. Strategies in order, first success wins:
//
//  1. follow redirects and parse @lat,lng from the final URL
//  2. parse an embedded coordinate object or a titled place from the body
//  3. extract a place name from the final URL path and forward-geocode it
//  4. forward-geocode the original URL text as a last resort
//
// Returns nil when every strategy fails.
func (c *Client) ResolveShortLink(rawURL string) *Place {
	finalURL := rawURL

	resp, err := c.get(rawURL)
	if err != nil {
		log.Printf("[geocode] shortlink fetch failed: %v", err)
	} else {
		defer resp.Body.Close()
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}

		if p := coordsFromURL(finalURL); p != nil {
			return p
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if p := coordsFromBody(body); p != nil {
			return p
		}
		if name := placeTitleFromBody(body); name != "" {
			if p := c.Geocode(name); p != nil {
				return p
			}
		}
	}

	if name := placeNameFromURL(finalURL); name != "" {
		if p := c.Geocode(name); p != nil {
			return p
		}
	}

	return c.Geocode(rawURL)
}

func coordsFromURL(u string) *Place {
	m := finalURLCoordRe.FindStringSubmatch(u)
	if m == nil {
		return nil
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lng, errLng := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLng != nil || !geo.IsValid(lat, lng) {
		return nil
	}
	return &Place{LatLng: geo.LatLng{Lat: lat, Lng: lng}}
}

func coordsFromBody(body []byte) *Place {
	m := bodyCoordRe.FindSubmatch(body)
	if m == nil {
		return nil
	}
	lat, errLat := strconv.ParseFloat(string(m[1]), 64)
	lng, errLng := strconv.ParseFloat(string(m[2]), 64)
	if errLat != nil || errLng != nil || !geo.IsValid(lat, lng) {
		return nil
	}
	return &Place{LatLng: geo.LatLng{Lat: lat, Lng: lng}}
}

// placeTitleFromBody pulls a place name out of the page's og:title or
// <title> so it can be forward-geocoded.
func placeTitleFromBody(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return cleanTitle(title)
	}
	return cleanTitle(doc.Find("title").First().Text())
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	// Provider suffix carries no place information.
	title = strings.TrimSuffix(title, " - Google Maps")
	if title == "Google Maps" {
		return ""
	}
	return title
}

func placeNameFromURL(u string) string {
	m := placePathRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	name := strings.ReplaceAll(m[1], "+", " ")
	if decoded, err := url.QueryUnescape(name); err == nil {
		name = decoded
	}
	return name
}
