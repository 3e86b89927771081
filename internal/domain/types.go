package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Partner (aliado) owns a set of categories and products. The nested slices
// mirror the shape the gateway returns; the catalog store flattens them on
// ingest.
type Partner struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	Categories []Category        `json:"categories,omitempty"`
	Products   []Product         `json:"products,omitempty"`
	Orders     []json.RawMessage `json:"orders,omitempty"`
}

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PartnerID int64  `json:"partnerId"`
}

// CategoryRef is the copy of a product's category embedded in product records.
type CategoryRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PartnerID int64  `json:"partnerId"`
}

type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	CategoryID  int64           `json:"categoryId"`
	PartnerID   int64           `json:"partnerId"`
	Category    *CategoryRef    `json:"category,omitempty"`
}

// Ref returns the embeddable copy of c.
func (c Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, PartnerID: c.PartnerID}
}

// Clone returns a deep copy of p so callers never share slices with the store.
func (p Product) Clone() Product {
	out := p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Category != nil {
		ref := *p.Category
		out.Category = &ref
	}
	return out
}

type PartnerInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Image string `json:"image" validate:"required"`
}

type CategoryInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	PartnerID int64  `json:"partnerId" validate:"required,gt=0"`
}

type ProductInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images" validate:"dive,required"`
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
	PartnerID   int64           `json:"partnerId" validate:"required,gt=0"`
}
