package pagebuilder

// Product is the content a template previews. Any field may be missing.
type Product struct {
	Name         string   `json:"name,omitempty"`
	Tagline      string   `json:"tagline,omitempty"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price,omitempty"`
	ComparePrice float64  `json:"comparePrice,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Images       []string `json:"images,omitempty"`
	Packs        []Pack   `json:"packs,omitempty"`
	Steps        []Step   `json:"steps,omitempty"`
	Reviews      []Review `json:"reviews,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
}

type Pack struct {
	Label    string  `json:"label"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Step struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Review struct {
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// DummyProduct is the placeholder content used wherever a real product has
// nothing to show.
func DummyProduct() Product {
	return Product{
		Name:         "Sample Product",
		Tagline:      "Your tagline goes here",
		Description:  "Describe what makes this product special. This text is shown until a real description is added.",
		Price:        49.99,
		ComparePrice: 69.99,
		Currency:     "USD",
		Images: []string{
			"https://placehold.co/800x800?text=Image+1",
			"https://placehold.co/800x800?text=Image+2",
			"https://placehold.co/800x800?text=Image+3",
		},
		Packs: []Pack{
			{Label: "Single", Quantity: 1, Price: 49.99},
			{Label: "Pack of 3", Quantity: 3, Price: 129.99},
			{Label: "Pack of 6", Quantity: 6, Price: 239.99},
		},
		Steps: []Step{
			{Title: "Prepare", Body: "Open the package and read the instructions."},
			{Title: "Apply", Body: "Use as directed."},
			{Title: "Repeat", Body: "Repeat daily for best results."},
		},
		Reviews: []Review{
			{Author: "Jane D.", Rating: 5, Body: "Exactly what I was looking for."},
			{Author: "Sam K.", Rating: 4, Body: "Works well, fast delivery."},
		},
		Rating: 4.5,
	}
}

// MergeProduct fills every empty field of p from DummyProduct.
func MergeProduct(p Product) Product {
	d := DummyProduct()
	if p.Name == "" {
		p.Name = d.Name
	}
	if p.Tagline == "" {
		p.Tagline = d.Tagline
	}
	if p.Description == "" {
		p.Description = d.Description
	}
	if p.Price <= 0 {
		p.Price = d.Price
	}
	if p.ComparePrice <= 0 {
		p.ComparePrice = d.ComparePrice
	}
	if p.Currency == "" {
		p.Currency = d.Currency
	}
	if len(p.Images) == 0 {
		p.Images = d.Images
	}
	if len(p.Packs) == 0 {
		p.Packs = d.Packs
	}
	if len(p.Steps) == 0 {
		p.Steps = d.Steps
	}
	if len(p.Reviews) == 0 {
		p.Reviews = d.Reviews
	}
	if p.Rating <= 0 {
		p.Rating = averageRating(p.Reviews)
	}
	return p
}

func averageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
