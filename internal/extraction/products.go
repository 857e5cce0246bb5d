package extraction

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/jonathan/catalog-etl/internal/types"
)

// DefaultProductSelector matches a product card: a div carrying both info class tokens.
const DefaultProductSelector = "div.ProductItem__Info.ProductItem__Info--center"

// Products extracts one record per element matching selector, in document order.
// Within a card the first link supplies the name and url, the first span the price.
// A missing element leaves its field nil; the record is still kept.
// An empty selector uses DefaultProductSelector.
func Products(htmlContent string, selector string) (types.RecordSet, error) {
	if selector == "" {
		selector = DefaultProductSelector
	}

	// goquery panics on an invalid selector, so compile it first
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid product selector %q", selector),
			Cause:   err,
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ParseError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	records := make(types.RecordSet, 0)
	doc.FindMatcher(compiled).Each(func(_ int, card *goquery.Selection) {
		records = append(records, productFromCard(card))
	})

	return records, nil
}

func productFromCard(card *goquery.Selection) types.ProductRecord {
	var record types.ProductRecord

	if link := card.Find("a").First(); link.Length() > 0 {
		record.ProductName = types.StringPtr(strings.TrimSpace(link.Text()))
		if href, ok := link.Attr("href"); ok {
			record.URL = types.StringPtr(href)
		}
	}

	if price := card.Find("span").First(); price.Length() > 0 {
		record.Price = types.StringPtr(strings.TrimSpace(price.Text()))
	}

	return record
}
