package application

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func mustCreateProduct(t *testing.T, f *fixture, owner *entity.Identity, title string) *entity.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), owner, CreateProductInput{Title: title, Description: title + " description"})
	require.NoError(t, err)
	return p
}

func TestProductCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.products.Create(ctx, alice, CreateProductInput{Title: "  Lamp ", Description: " Brass desk lamp ", ImageURL: "   "})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Lamp", p.Title)
	assert.Equal(t, "Brass desk lamp", p.Description)
	assert.Nil(t, p.ImageURL, "blank image url is stored as NULL")
	assert.Equal(t, alice.ID, p.UserID)
	assert.Equal(t, entity.ProductActive, p.Status)

	_, err = f.profiles.GetProfile(ctx, alice.ID)
	assert.NoError(t, err, "creating a product reconciles the owner's profile")
}

func TestProductCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.products.Create(ctx, nil, CreateProductInput{Title: "x", Description: "y"})
	assert.Equal(t, ReasonUnauthenticated, ReasonOf(err))

	_, err = f.products.Create(ctx, alice, CreateProductInput{Title: "  ", Description: "y"})
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))

	_, err = f.products.Create(ctx, alice, CreateProductInput{Title: "x", Description: "\t"})
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))

	n, _ := f.store.Products().Count(ctx)
	assert.Zero(t, n, "rejected creates persist nothing")
	n, _ = f.store.Profiles().Count(ctx)
	assert.Zero(t, n, "unauthenticated and invalid calls do not create profiles")
}

func TestProductList_Pagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	i := 0
	f.store.SetClock(func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	})
	for n := 1; n <= 25; n++ {
		mustCreateProduct(t, f, alice, fmt.Sprintf("Item %02d", n))
	}

	page3, err := f.products.List(ctx, ListProductsInput{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Products, 5)
	assert.Equal(t, Pagination{Page: 3, Limit: 10, Total: 25, TotalPages: 3}, page3.Pagination)
	assert.Equal(t, "Item 05", page3.Products[0].Title)
	assert.Equal(t, "Item 01", page3.Products[4].Title)

	first, err := f.products.List(ctx, ListProductsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Pagination.Page)
	assert.Equal(t, 10, first.Pagination.Limit)
	assert.Equal(t, "Item 25", first.Products[0].Title, "newest first")
	require.NotNil(t, first.Products[0].Profile)
	assert.Equal(t, "alice", first.Products[0].Profile.Username)

	beyond, err := f.products.List(ctx, ListProductsInput{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, beyond.Products)
	assert.Empty(t, beyond.Products)
}

func TestProductList_SearchAndActiveOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mustCreateProduct(t, f, alice, "Blue Widget")
	gadget, err := f.products.Create(ctx, alice, CreateProductInput{Title: "Gadget", Description: "works with any WIDGET"})
	require.NoError(t, err)
	mustCreateProduct(t, f, alice, "Sprocket")
	hidden := mustCreateProduct(t, f, alice, "Draft widget")
	_, err = f.products.Update(ctx, alice, hidden.ID, UpdateProductInput{Status: strPtr("draft")})
	require.NoError(t, err)

	res, err := f.products.List(ctx, ListProductsInput{Search: "widget"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Total)
	titles := []string{res.Products[0].Title, res.Products[1].Title}
	assert.ElementsMatch(t, []string{"Blue Widget", gadget.Title}, titles)

	all, err := f.products.List(ctx, ListProductsInput{Limit: 100})
	require.NoError(t, err)
	for _, it := range all.Products {
		assert.Equal(t, entity.ProductActive, it.Status)
	}
	assert.Equal(t, 3, all.Pagination.Total)
}

func TestProductGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Chair")
	_, err := f.comments.Create(ctx, bob, p.ID, "nice chair")
	require.NoError(t, err)

	d, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chair", d.Title)
	require.NotNil(t, d.Profile)
	assert.Equal(t, "alice@example.com", d.Profile.Email)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, "bob", d.Comments[0].AuthorUsername)

	_, err = f.products.Get(ctx, "missing")
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}

func TestProductUpdate_OwnerOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Table")

	_, err := f.products.Update(ctx, bob, p.ID, UpdateProductInput{Title: strPtr("Stolen")})
	assert.Equal(t, ReasonForbidden, ReasonOf(err))
	_, err = f.products.Update(ctx, nil, p.ID, UpdateProductInput{Title: strPtr("Stolen")})
	assert.Equal(t, ReasonUnauthenticated, ReasonOf(err))

	stored, err := f.store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Table", stored.Title, "denied update leaves the row unchanged")

	updated, err := f.products.Update(ctx, alice, p.ID, UpdateProductInput{
		Title:    strPtr(" Oak table "),
		ImageURL: strPtr("https://img.example.com/t.png"),
		Status:   strPtr("inactive"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Oak table", updated.Title)
	assert.Equal(t, "Table description", updated.Description, "omitted fields are untouched")
	assert.Equal(t, entity.ProductInactive, updated.Status)
	assert.Equal(t, alice.ID, updated.UserID)

	cleared, err := f.products.Update(ctx, alice, p.ID, UpdateProductInput{ImageURL: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, cleared.ImageURL)
}

func TestProductUpdate_Invalid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Rug")

	_, err := f.products.Update(ctx, alice, p.ID, UpdateProductInput{Status: strPtr("sold")})
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))
	_, err = f.products.Update(ctx, alice, p.ID, UpdateProductInput{Description: strPtr("")})
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))
	_, err = f.products.Update(ctx, alice, "missing", UpdateProductInput{Title: strPtr("x")})
	assert.Equal(t, ReasonForbidden, ReasonOf(err), "a missing product is reported as forbidden")
}

func TestProductDelete_CascadesComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Vase")
	_, err := f.comments.Create(ctx, bob, p.ID, "how old is it?")
	require.NoError(t, err)

	assert.Equal(t, ReasonForbidden, ReasonOf(f.products.Delete(ctx, bob, p.ID)))
	require.NoError(t, f.products.Delete(ctx, alice, p.ID))

	_, err = f.store.Products().GetByID(ctx, p.ID)
	assert.Error(t, err)
	n, _ := f.store.Comments().Count(ctx)
	assert.Zero(t, n)
}

func TestProductIndexing(t *testing.T) {
	f := newFixture().withBackends()
	ctx := context.Background()

	p := mustCreateProduct(t, f, alice, "Kettle")
	assert.Contains(t, f.index.docs, p.ID)

	_, err := f.products.Update(ctx, alice, p.ID, UpdateProductInput{Status: strPtr("draft")})
	require.NoError(t, err)
	assert.NotContains(t, f.index.docs, p.ID, "non-active products leave the index")

	_, err = f.products.Update(ctx, alice, p.ID, UpdateProductInput{Status: strPtr("active")})
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(ctx, alice, p.ID))
	assert.NotContains(t, f.index.docs, p.ID)
	assert.Contains(t, f.index.removed, p.ID)
}

func TestProductIndexing_FailureIsNotFatal(t *testing.T) {
	f := newFixture().withBackends()
	f.index.err = errBoom

	p, err := f.products.Create(context.Background(), alice, CreateProductInput{Title: "Mug", Description: "Stoneware"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
}

func TestProductSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mustCreateProduct(t, f, alice, "Red widget")
	mustCreateProduct(t, f, alice, "Teapot")

	_, err := f.products.Search(ctx, "  ", 5)
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))

	res, err := f.products.Search(ctx, "WIDGET", 0)
	require.NoError(t, err, "falls back to the store without an index")
	require.Len(t, res, 1)
	assert.Equal(t, "Red widget", res[0].Title)

	f.withBackends()
	f.index.docs["x"] = entity.Product{ID: "x", Title: "from index"}
	res, err = f.products.Search(ctx, "anything", 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "from index", res[0].Title)
}

func TestProductUploadImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Poster")

	_, err := f.products.UploadImage(ctx, alice, p.ID, strings.NewReader("png"), "poster.png", "image/png")
	assert.Equal(t, ReasonInternal, ReasonOf(err), "no image storage configured")

	f.withBackends()
	_, err = f.products.UploadImage(ctx, bob, p.ID, strings.NewReader("png"), "poster.png", "image/png")
	assert.Equal(t, ReasonForbidden, ReasonOf(err))
	_, err = f.products.UploadImage(ctx, alice, p.ID, strings.NewReader("%PDF"), "poster.pdf", "application/pdf")
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))

	updated, err := f.products.UploadImage(ctx, alice, p.ID, strings.NewReader("png-bytes"), "Poster.PNG", "image/png")
	require.NoError(t, err)
	require.Len(t, f.images.paths, 1)
	assert.True(t, strings.HasPrefix(f.images.paths[0], "products/"+p.ID+"/"))
	assert.True(t, strings.HasSuffix(f.images.paths[0], ".png"))
	assert.Equal(t, []byte("png-bytes"), f.images.body)
	require.NotNil(t, updated.ImageURL)
	assert.Contains(t, *updated.ImageURL, f.images.paths[0])
}
