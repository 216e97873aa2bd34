package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-community-market/pkg/mailer"
	tpl "github.com/oksasatya/go-community-market/pkg/mailer/templates"
)

func TestCommentCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")

	c, err := f.comments.Create(ctx, bob, p.ID, "  still available?  ")
	require.NoError(t, err)
	assert.Equal(t, "still available?", c.Content)
	assert.Equal(t, bob.ID, c.UserID)
	assert.Equal(t, p.ID, c.ProductID)
	assert.Equal(t, "bob", c.AuthorUsername)

	list, err := f.comments.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestCommentCreate_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")

	_, err := f.comments.Create(ctx, nil, p.ID, "hello")
	assert.Equal(t, ReasonUnauthenticated, ReasonOf(err))

	_, err = f.comments.Create(ctx, bob, p.ID, " \n\t ")
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))

	_, err = f.comments.Create(ctx, bob, "missing-product", "hello")
	assert.Equal(t, ReasonStore, ReasonOf(err))

	n, _ := f.store.Comments().Count(ctx)
	assert.Zero(t, n)
}

func TestCommentList_NewestFirstAndEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")

	empty, err := f.comments.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, body := range []string{"first", "second", "third"} {
		_, err := f.comments.Create(ctx, bob, p.ID, body)
		require.NoError(t, err)
	}
	list, err := f.comments.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "first", list[2].Content)
}

func TestCommentDelete_AuthorOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")
	other := mustCreateProduct(t, f, alice, "Helmet")
	c, err := f.comments.Create(ctx, bob, p.ID, "mine")
	require.NoError(t, err)

	assert.Equal(t, ReasonUnauthenticated, ReasonOf(f.comments.Delete(ctx, nil, p.ID, c.ID)))
	assert.Equal(t, ReasonForbidden, ReasonOf(f.comments.Delete(ctx, alice, p.ID, c.ID)), "product owner cannot delete others' comments")
	assert.Equal(t, ReasonForbidden, ReasonOf(f.comments.Delete(ctx, bob, other.ID, c.ID)), "path product must match")
	assert.Equal(t, ReasonForbidden, ReasonOf(f.comments.Delete(ctx, bob, p.ID, "missing")))

	n, _ := f.store.Comments().Count(ctx)
	assert.Equal(t, 1, n)

	require.NoError(t, f.comments.Delete(ctx, bob, p.ID, c.ID))
	n, _ = f.store.Comments().Count(ctx)
	assert.Zero(t, n)
}

func TestCommentCreate_NotifiesOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")

	_, err := f.comments.Create(ctx, alice, p.ID, "bump")
	require.NoError(t, err)
	assert.Zero(t, f.jobs.count(), "owners are not notified of their own comments")

	long := strings.Repeat("é", 200)
	_, err = f.comments.Create(ctx, bob, p.ID, long)
	require.NoError(t, err)
	require.Equal(t, 1, f.jobs.count())

	job, ok := f.jobs.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, tpl.CommentPosted, job.Template)
	assert.Equal(t, "Bike", job.Data["ProductTitle"])
	assert.Equal(t, "bob", job.Data["CommenterName"])
	assert.Equal(t, "https://market.test/products/"+p.ID, job.Data["ProductURL"])
	excerpt, _ := job.Data["CommentExcerpt"].(string)
	assert.Equal(t, 141, len([]rune(excerpt)))
}

func TestCommentCreate_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.jobs.err = errBoom
	ctx := context.Background()
	p := mustCreateProduct(t, f, alice, "Bike")

	_, err := f.comments.Create(ctx, bob, p.ID, "hello")
	assert.NoError(t, err)
}

func TestNotifier_DisabledWithoutPublisher(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.False(t, NewNotifier(nil, tpl.Brand{}, nil).Enabled())
}
