package domain

import (
	"fmt"
	"strings"
)

// Category is the closed set of product categories sold by the shop
type Category string

const (
	CategoryPizza     Category = "pizza"
	CategoryQuentinha Category = "quentinha"
	CategoryBebida    Category = "bebida"
	CategoryEsfiha    Category = "esfiha"
)

// Categories lists every known category in display order
var Categories = []Category{CategoryPizza, CategoryQuentinha, CategoryBebida, CategoryEsfiha}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryPizza, CategoryQuentinha, CategoryBebida, CategoryEsfiha:
		return true
	}
	return false
}

// ParseCategory converts a raw string into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func joinCategories() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Kind is the product variant, derived from the category
type Kind int

const (
	KindSimple Kind = iota
	KindPizza
)

const (
	MinPizzaSizeCM = 20
	MaxPizzaSizeCM = 100
)

// PizzaSize is one size/price tier of a pizza
type PizzaSize struct {
	SizeCM int     `json:"size_cm" validate:"gte=20,lte=100"`
	Price  float64 `json:"price" validate:"gt=0"`
}

// Product represents a sellable item. Category is the discriminant: Sizes is
// only carried by pizzas and is always empty for the other categories.
type Product struct {
	ID          string      `json:"id" validate:"required"`
	Name        string      `json:"name" validate:"required,min=1,max=100"`
	Category    Category    `json:"category" validate:"required,category"`
	Description string      `json:"description,omitempty" validate:"max=500"`
	Price       float64     `json:"price" validate:"gt=0"`
	Active      bool        `json:"active"`
	ImageURL    string      `json:"image_url,omitempty" validate:"omitempty,http_url"`
	Sizes       []PizzaSize `json:"sizes,omitempty" validate:"omitempty,dive"`
}

// ProductParams holds the caller-supplied fields of a new product
type ProductParams struct {
	ID          string
	Name        string
	Category    Category
	Description string
	Price       float64
	// Active defaults to true when nil
	Active   *bool
	ImageURL string
}

// NewProduct builds and validates a product. A pizza built here has no sizes
// and therefore always fails; pizzas are built with NewPizza.
func NewProduct(params ProductParams) (*Product, error) {
	p := newProduct(params)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPizza builds and validates a pizza with its size tiers
func NewPizza(params ProductParams, sizes []PizzaSize) (*Product, error) {
	params.Category = CategoryPizza
	p := newProduct(params)

	p.Sizes = make([]PizzaSize, len(sizes))
	for i, s := range sizes {
		p.Sizes[i] = PizzaSize{SizeCM: s.SizeCM, Price: RoundPrice(s.Price)}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newProduct(params ProductParams) *Product {
	active := true
	if params.Active != nil {
		active = *params.Active
	}

	return &Product{
		ID:          strings.TrimSpace(params.ID),
		Name:        params.Name,
		Category:    params.Category,
		Description: params.Description,
		Price:       RoundPrice(params.Price),
		Active:      active,
		ImageURL:    params.ImageURL,
	}
}

// Kind returns the variant of the product
func (p *Product) Kind() Kind {
	if p.Category == CategoryPizza {
		return KindPizza
	}
	return KindSimple
}

// IsPizza reports whether the product is the pizza variant
func (p *Product) IsPizza() bool {
	return p.Kind() == KindPizza
}

// Validate checks every field invariant and returns a *ValidationError
// listing all violations, or nil.
func (p *Product) Validate() error {
	verr := &ValidationError{}
	validateStruct(p, verr)

	switch p.Kind() {
	case KindPizza:
		if len(p.Sizes) == 0 {
			verr.add("sizes", "at least one size is required")
		}
	default:
		if len(p.Sizes) > 0 {
			verr.add("sizes", "only pizzas have sizes")
		}
	}

	return verr.orNil()
}

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	c := *p
	if p.Sizes != nil {
		c.Sizes = append([]PizzaSize(nil), p.Sizes...)
	}
	return &c
}

// ProductPatch carries the optional fields of a partial product update.
// ID and Category are immutable and cannot be patched.
type ProductPatch struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Active      *bool       `json:"active,omitempty"`
	ImageURL    *string     `json:"image_url,omitempty"`
	Sizes       []PizzaSize `json:"sizes,omitempty"`
}

// IsEmpty reports whether the patch carries no field
func (pp ProductPatch) IsEmpty() bool {
	return pp.Name == nil && pp.Description == nil && pp.Price == nil &&
		pp.Active == nil && pp.ImageURL == nil && pp.Sizes == nil
}

// Apply writes every present field onto p, rounding prices
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = RoundPrice(*pp.Price)
	}
	if pp.Active != nil {
		p.Active = *pp.Active
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
	if pp.Sizes != nil {
		p.Sizes = make([]PizzaSize, len(pp.Sizes))
		for i, s := range pp.Sizes {
			p.Sizes[i] = PizzaSize{SizeCM: s.SizeCM, Price: RoundPrice(s.Price)}
		}
	}
}
