package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/go-community-market/config"
)

// Brand carries the site-wide fields shared by every email.
type Brand struct {
	CompanyName string
	AppName     string
	SiteURL     string
	LogoURL     string
	SupportURL  string
}

func BrandFromConfig(cfg *config.Config) Brand {
	return Brand{
		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SiteURL:     cfg.SiteURL,
		LogoURL:     cfg.LogoURL,
		SupportURL:  cfg.SupportURL,
	}
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// WithProduct sets the product fields and links to its page on the site.
func WithProduct(id, title string) Option {
	return func(d *EmailData) {
		d.ProductID = id
		d.ProductTitle = title
		if d.SiteURL != "" && id != "" {
			d.ProductURL = d.SiteURL + "/products/" + id
		}
	}
}

func WithComment(author, excerpt string) Option {
	return func(d *EmailData) {
		d.CommenterName = strings.TrimSpace(author)
		d.CommentExcerpt = excerpt
	}
}

// NewBaseEmailData fills the brand fields, then applies opts in order.
func NewBaseEmailData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName: b.CompanyName,
		AppName:     b.AppName,
		SiteURL:     b.SiteURL,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewCommentPostedData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, CommentPosted, name, email, opts...))
}

func NewWelcomeData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email, opts...))
}
