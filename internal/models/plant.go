// Package models defines the domain types for Sprout.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

// FallbackImageURL is attached by the enricher when no species photo can be resolved.
const FallbackImageURL = "https://i.pinimg.com/736x/e8/57/65/e85765051859e2dc2ad3bb24b094abf5.jpg"

// DefaultImageURL is shown for records that were never enriched.
const DefaultImageURL = "https://images.unsplash.com/photo-1485955900006-10f4d324d411?ixlib=rb-1.2.1&auto=format&fit=crop&w=500&q=60"

// TimestampLayout is the ISO-8601 layout used for AddedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Plant is a single suggestion or saved entry. ScientificName is its identity key.
type Plant struct {
	Name           string   `json:"name"`
	ScientificName string   `json:"scientificName"`
	Benefits       Benefits `json:"benefits"`
	Light          string   `json:"light,omitempty"`
	Water          string   `json:"water,omitempty"`
	Humidity       string   `json:"humidity,omitempty"`
	Temperature    string   `json:"temperature,omitempty"`
	Image          string   `json:"image,omitempty"`
	AddedAt        string   `json:"addedAt,omitempty"`
}

// Timestamp formats t the way AddedAt is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Benefits holds either a single benefits string or an ordered list of them.
// The shape as received is kept so persisted records round-trip unchanged.
type Benefits struct {
	values []string
	list   bool
}

// BenefitsText returns a single-string Benefits value.
func BenefitsText(s string) Benefits {
	return Benefits{values: []string{s}}
}

// BenefitsList returns a list-shaped Benefits value.
func BenefitsList(items ...string) Benefits {
	return Benefits{values: append([]string{}, items...), list: true}
}

// Values returns the benefits as a slice regardless of shape.
func (b Benefits) Values() []string {
	return append([]string(nil), b.values...)
}

// IsList reports whether the benefits were given as a list.
func (b Benefits) IsList() bool { return b.list }

// String joins list benefits with ", ".
func (b Benefits) String() string {
	return strings.Join(b.values, ", ")
}

// MarshalJSON encodes the benefits in the shape they were decoded from.
func (b Benefits) MarshalJSON() ([]byte, error) {
	if b.list {
		if b.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(b.values)
	}
	if len(b.values) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(b.values[0])
}

// UnmarshalJSON accepts a string or an array of strings.
func (b *Benefits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = Benefits{}
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return errors.New("benefits: list must contain only strings")
		}
		*b = BenefitsList(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("benefits: must be a string or a list of strings")
	}
	*b = BenefitsText(s)
	return nil
}

// FormatBenefits renders benefits for display.
func FormatBenefits(b Benefits) string {
	if s := b.String(); s != "" {
		return s
	}
	if b.list {
		return ""
	}
	return "No specific benefits listed"
}

// CareTips are care requirements with display defaults filled in.
type CareTips struct {
	Light       string `json:"light"`
	Water       string `json:"water"`
	Humidity    string `json:"humidity"`
	Temperature string `json:"temperature"`
}

// CareTips returns the plant's care requirements, substituting defaults for
// absent values. Defaults are never written back to the record.
func (p Plant) CareTips() CareTips {
	return CareTips{
		Light:       orDefault(p.Light, "Moderate indirect light"),
		Water:       orDefault(p.Water, "Water when top inch of soil is dry"),
		Humidity:    orDefault(p.Humidity, "Average household humidity"),
		Temperature: orDefault(p.Temperature, "Room temperature (65-75°F)"),
	}
}

// DisplayImage returns the image to show on a card.
func (p Plant) DisplayImage() string {
	return orDefault(p.Image, DefaultImageURL)
}

// ShopURL returns a web search link for buying the plant.
func (p Plant) ShopURL() string {
	q := url.Values{}
	q.Set("q", strings.ToLower(p.Name)+" buy online")
	return "https://www.google.com/search?" + q.Encode()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
