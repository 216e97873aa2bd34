package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/pkg/mailer"
	tpl "github.com/oksasatya/go-community-market/pkg/mailer/templates"
)

const excerptRunes = 140

// Notifier turns domain events into email jobs on the notification queue.
type Notifier struct {
	Pub    JobPublisher
	Brand  tpl.Brand
	Logger *logrus.Logger
}

func NewNotifier(pub JobPublisher, brand tpl.Brand, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Logger: logger}
}

// Enabled reports whether jobs can be published at all.
func (n *Notifier) Enabled() bool {
	return n != nil && n.Pub != nil
}

func (n *Notifier) CommentPosted(ctx context.Context, owner *entity.Profile, product *entity.Product, author *entity.Profile, c *entity.CommentView) {
	if !n.Enabled() {
		return
	}
	data := tpl.NewCommentPostedData(n.Brand, owner.Username, owner.Email,
		tpl.WithProduct(product.ID, product.Title),
		tpl.WithComment(author.Username, excerpt(c.Content)),
		tpl.WithTime(c.CreatedAt),
	)
	n.publish(ctx, mailer.EmailJob{To: owner.Email, Template: tpl.CommentPosted, Data: data})
}

func (n *Notifier) Welcome(ctx context.Context, p *entity.Profile) {
	if !n.Enabled() {
		return
	}
	data := tpl.NewWelcomeData(n.Brand, p.Username, p.Email, tpl.WithTime(p.CreatedAt))
	n.publish(ctx, mailer.EmailJob{To: p.Email, Template: tpl.Welcome, Data: data})
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if !n.Enabled() || job.To == "" {
		return
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}
