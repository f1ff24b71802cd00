package widget

import (
	_ "embed"
)

//go:embed templates/pizza-map.html
var pizzaMapHTML string

//go:embed templates/pizza-carousel.html
var pizzaCarouselHTML string

//go:embed templates/pizza-albums.html
var pizzaAlbumsHTML string

//go:embed templates/pizza-list.html
var pizzaListHTML string

//go:embed templates/pizza-video.html
var pizzaVideoHTML string

// Pizzaz returns the built-in pizza widget catalog. The definitions are
// static, so construction cannot fail once the set passes the duplicate
// checks exercised by the package tests.
func Pizzaz() *Catalog {
	c, err := NewCatalog(
		Widget{
			ID:           "pizza-map",
			Title:        "Show Pizza Map",
			TemplateURI:  "ui://widget/pizza-map.html",
			Invoking:     "Hand-tossing a map",
			Invoked:      "Served a fresh map",
			HTML:         pizzaMapHTML,
			ResponseText: "Rendered a pizza map!",
		},
		Widget{
			ID:           "pizza-carousel",
			Title:        "Show Pizza Carousel",
			TemplateURI:  "ui://widget/pizza-carousel.html",
			Invoking:     "Carouselling pizzas",
			Invoked:      "Served a pizza carousel",
			HTML:         pizzaCarouselHTML,
			ResponseText: "Rendered a pizza carousel!",
		},
		Widget{
			ID:           "pizza-albums",
			Title:        "Show Pizza Album",
			TemplateURI:  "ui://widget/pizza-albums.html",
			Invoking:     "Hand-tossing an album",
			Invoked:      "Served a fresh album",
			HTML:         pizzaAlbumsHTML,
			ResponseText: "Rendered a pizza album!",
		},
		Widget{
			ID:           "pizza-list",
			Title:        "Show Pizza List",
			TemplateURI:  "ui://widget/pizza-list.html",
			Invoking:     "Hand-tossing a list",
			Invoked:      "Served a fresh list",
			HTML:         pizzaListHTML,
			ResponseText: "Rendered a pizza list!",
		},
		Widget{
			ID:           "pizza-video",
			Title:        "Show Pizza Video",
			TemplateURI:  "ui://widget/pizza-video.html",
			Invoking:     "Hand-tossing a video",
			Invoked:      "Served a fresh video",
			HTML:         pizzaVideoHTML,
			ResponseText: "Rendered a pizza video!",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
