package pagebuilder

// Props are the values a variant draws.
type Props map[string]interface{}

// View is one rendered component.
type View struct {
	ComponentID string
	Section     Section
	Variant     string
	Span        int
	Props       Props
}

// Render resolves c's variant and builds its props from product, with dummy
// content standing in for anything product lacks.
func Render(c Component, s Settings, product Product) (View, error) {
	if err := validate(c); err != nil {
		return View{}, err
	}
	p := MergeProduct(product)
	variant := Resolve(c, s)

	return View{
		ComponentID: c.ID,
		Section:     c.Section,
		Variant:     variant,
		Span:        clampSpan(c.Span),
		Props:       props(c.Section, variant, p),
	}, nil
}

// Layout renders components in order.
func Layout(components []Component, s Settings, product Product) ([]View, error) {
	views := make([]View, 0, len(components))
	for _, c := range components {
		v, err := Render(c, s, product)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func props(section Section, variant string, p Product) Props {
	switch section {
	case SectionImages:
		out := Props{"images": p.Images, "alt": p.Name}
		switch variant {
		case "carousel":
			out["autoplay"] = true
		case "grid":
			out["columns"] = 2
		case "thumbnail-rail":
			out["cover"] = p.Images[0]
			out["thumbnails"] = p.Images[1:]
		}
		return out

	case SectionDetails:
		out := Props{
			"name":     p.Name,
			"tagline":  p.Tagline,
			"price":    p.Price,
			"currency": p.Currency,
		}
		switch variant {
		case "classic", "split":
			out["description"] = p.Description
			out["comparePrice"] = p.ComparePrice
		case "pack-picker":
			out["packs"] = p.Packs
			out["description"] = p.Description
		}
		return out

	case SectionHowToUse:
		out := Props{"steps": p.Steps}
		if variant == "accordion" {
			out["initiallyOpen"] = 0
		}
		return out

	case SectionReviews:
		out := Props{"rating": p.Rating, "count": len(p.Reviews)}
		if variant != "summary" {
			out["reviews"] = p.Reviews
		}
		return out
	}
	return Props{}
}
