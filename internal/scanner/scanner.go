package scanner

import (
	"fmt"
	"strings"
)

// Layout captures the selectors needed to crawl one listing site.
type Layout struct {
	Name string
	// ListingHeading selects each headline block on a listing page; the first
	// anchor inside it carries the article URL.
	ListingHeading string
	// FeaturedMarker must be present for an article page to be relayed.
	FeaturedMarker string
	// Title selects the article heading.
	Title string
	// ParagraphTag is the element taken as lead paragraph after the marker.
	ParagraphTag string
}

// GKToday is the layout of the gktoday.in current affairs section.
var GKToday = Layout{
	Name:           "gktoday",
	ListingHeading: "h1#list",
	FeaturedMarker: `div.featured_image[style="margin-bottom:-5px;"]`,
	Title:          `h1#list[style="text-align:center; font-size:20px;"]`,
	ParagraphTag:   "p",
}

// Registry keeps a mapping from layout names to their selectors.
type Registry struct {
	layouts map[string]Layout
}

// NewRegistry builds a registry preloaded with the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: map[string]Layout{}}
	r.Register(GKToday)
	return r
}

// Register adds or replaces a layout.
func (r *Registry) Register(layout Layout) {
	if r.layouts == nil {
		r.layouts = map[string]Layout{}
	}
	r.layouts[strings.ToLower(layout.Name)] = layout
}

// Resolve returns a layout by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Layout, error) {
	if layout, ok := r.layouts[strings.ToLower(strings.TrimSpace(name))]; ok {
		return layout, nil
	}
	return Layout{}, fmt.Errorf("layout %s is not registered", name)
}
