// Package extract parses catalog listing markup into product records.
//
// The target site's theme is unstable: the product illustration is the second
// <img> in each grid cell (the first is a hover swap image) and the price
// amount is the second child node of the currency wrapper element (the first
// is the currency symbol). Both positions are theme-coupled compatibility
// risks, so they live in Rules rather than in code.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dpkgyl/catalog-scraper/internal/metrics"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

// Rules pins down the positional assumptions about the theme's DOM.
type Rules struct {
	// ContainerClass is matched exactly against the class attribute of the
	// product-grid container.
	ContainerClass string
	// ImageIndex selects the product illustration among a cell's <img> elements.
	ImageIndex int
	// PriceSelector locates the inline element wrapping the currency amount.
	PriceSelector string
	// PriceChildIndex selects the amount among the price element's child nodes.
	PriceChildIndex int
}

// DefaultRules matches the storefront theme the service was built against.
func DefaultRules() Rules {
	return Rules{
		ContainerClass:  "products columns-4",
		ImageIndex:      1,
		PriceSelector:   "bdi",
		PriceChildIndex: 1,
	}
}

var sanitizePattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Sanitize strips every rune outside letters, digits, underscore, and
// whitespace. Idempotent; never adds characters.
func Sanitize(s string) string {
	return sanitizePattern.ReplaceAllString(s, "")
}

// Extractor turns one listing page into accepted products plus their fetched
// image assets, consulting the price cache to skip unchanged products.
type Extractor struct {
	rules   Rules
	cache   scrape.PriceCache
	gateway scrape.Gateway
	logger  *zap.Logger
}

// New builds an Extractor.
func New(rules Rules, cache scrape.PriceCache, gateway scrape.Gateway, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{rules: rules, cache: cache, gateway: gateway, logger: logger}
}

// Extract implements scrape.Extractor.
func (e *Extractor) Extract(ctx context.Context, markup []byte) ([]scrape.Product, []scrape.ImageAsset, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, nil, &scrape.ExtractionError{Missing: "parseable markup"}
	}

	container := doc.Find(fmt.Sprintf(`[class=%q]`, e.rules.ContainerClass)).First()
	if container.Length() == 0 {
		return nil, nil, &scrape.ExtractionError{
			Missing: fmt.Sprintf("grid container with class %q", e.rules.ContainerClass),
		}
	}

	var (
		products   []scrape.Product
		assets     []scrape.ImageAsset
		extractErr error
	)
	container.Children().EachWithBreak(func(i int, cell *goquery.Selection) bool {
		product, asset, accepted, cellErr := e.extractCell(ctx, i, cell)
		if cellErr != nil {
			extractErr = cellErr
			return false
		}
		if !accepted {
			metrics.ProductSkipped()
			return true
		}
		metrics.ProductAccepted()
		products = append(products, product)
		assets = append(assets, asset)
		return true
	})
	if extractErr != nil {
		return nil, nil, extractErr
	}
	return products, assets, nil
}

func (e *Extractor) extractCell(ctx context.Context, index int, cell *goquery.Selection) (scrape.Product, scrape.ImageAsset, bool, error) {
	images := cell.Find("img")
	if images.Length() <= e.rules.ImageIndex {
		return scrape.Product{}, scrape.ImageAsset{}, false, &scrape.MalformedProductError{
			Index:  index,
			Reason: fmt.Sprintf("want at least %d img elements, found %d", e.rules.ImageIndex+1, images.Length()),
		}
	}
	illustration := images.Eq(e.rules.ImageIndex)
	rawTitle := illustration.AttrOr("title", "")
	imageURL := illustration.AttrOr("src", "")

	price, err := e.extractPrice(index, cell)
	if err != nil {
		return scrape.Product{}, scrape.ImageAsset{}, false, err
	}

	title := Sanitize(rawTitle)
	if !e.cache.IsDifferent(title, price) {
		e.logger.Debug("product unchanged, skipping", zap.String("title", title))
		return scrape.Product{}, scrape.ImageAsset{}, false, nil
	}

	data, err := e.gateway.Retrieve(ctx, imageURL)
	if err != nil {
		return scrape.Product{}, scrape.ImageAsset{}, false, err
	}
	e.cache.Put(title, price)

	product := scrape.Product{Title: title, Price: price, ImageURL: imageURL}
	asset := scrape.ImageAsset{Key: title, Data: data}
	return product, asset, true, nil
}

// extractPrice reads the amount out of the cell's price element. An absent
// price element means the product has no listed price and defaults to 0.
func (e *Extractor) extractPrice(index int, cell *goquery.Selection) (float64, error) {
	priceEl := cell.Find(e.rules.PriceSelector).First()
	if priceEl.Length() == 0 {
		return 0, nil
	}
	children := childNodes(priceEl.Get(0))
	if len(children) <= e.rules.PriceChildIndex {
		return 0, &scrape.MalformedProductError{
			Index:  index,
			Reason: fmt.Sprintf("price element has %d child nodes, want at least %d", len(children), e.rules.PriceChildIndex+1),
		}
	}
	text := strings.TrimSpace(nodeText(children[e.rules.PriceChildIndex]))
	price, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &scrape.MalformedProductError{
			Index:  index,
			Reason: fmt.Sprintf("unparseable price %q", text),
		}
	}
	return price, nil
}

// childNodes returns all child nodes of n, text nodes included, matching how
// a DOM children list counts the currency-symbol element and the amount text
// as siblings.
func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
