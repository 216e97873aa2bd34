package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-community-market/pkg/mailer"
	mailtpl "github.com/oksasatya/go-community-market/pkg/mailer/templates"
)

func subjectFor(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.CommentPosted:
		return "New comment on your product"
	case mailtpl.Welcome:
		return "Welcome aboard"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// RenderJob resolves the subject and bodies of a job. Template jobs are
// rendered from the embedded templates; raw jobs are passed through.
func RenderJob(job *mailer.EmailJob) (subject, text, html string, err error) {
	subject, text, html = job.Subject, job.Text, job.HTML
	if job.Template != "" {
		EnsureRecipientAndEmail(job)
		subject, text, html, err = mailtpl.Render(strings.ToLower(job.Template), job.Data)
		if err != nil {
			return "", "", "", err
		}
	}
	if strings.TrimSpace(subject) == "" {
		subject = subjectFor(job.Template)
	}
	return strings.TrimSpace(subject), text, html, nil
}
