package application

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/oksasatya/go-community-market/internal/domain/entity"
	"github.com/oksasatya/go-community-market/internal/infrastructure/memory"
	"github.com/oksasatya/go-community-market/internal/session"
	tpl "github.com/oksasatya/go-community-market/pkg/mailer/templates"
)

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func identity(id, email, username string) *entity.Identity {
	var meta map[string]any
	if username != "" {
		meta = map[string]any{"username": username}
	}
	return &entity.Identity{ID: id, Email: email, Metadata: meta, SessionID: "sess-" + id, AccessToken: "tok-" + id}
}

var (
	alice = identity("11111111-1111-4111-8111-111111111111", "alice@example.com", "alice")
	bob   = identity("22222222-2222-4222-8222-222222222222", "bob@example.com", "bob")
)

type fixture struct {
	store    *memory.Store
	jobs     *fakeJobs
	index    *fakeIndex
	images   *fakeImages
	profiles *ProfileService
	products *ProductService
	comments *CommentService
}

func newFixture() *fixture {
	st := memory.NewStore()
	jobs := &fakeJobs{}
	logger := quietLogger()
	notifier := NewNotifier(jobs, tpl.Brand{SiteURL: "https://market.test"}, logger)
	profiles := NewProfileService(st.Profiles(), nil, nil, logger)
	return &fixture{
		store:    st,
		jobs:     jobs,
		profiles: profiles,
		products: NewProductService(st.Products(), profiles, nil, nil, logger),
		comments: NewCommentService(st.Comments(), st.Products(), profiles, notifier, logger),
	}
}

// withBackends attaches fake image storage and search index to the product service.
func (f *fixture) withBackends() *fixture {
	f.index = &fakeIndex{docs: map[string]entity.Product{}}
	f.images = &fakeImages{}
	f.products.Index = f.index
	f.products.Images = f.images
	return f
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakeJobs) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

func (f *fakeJobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]entity.Product
	removed []string
	err     error
}

func (f *fakeIndex) Index(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.removed = append(f.removed, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Product, 0, len(f.docs))
	for _, p := range f.docs {
		out = append(out, p)
	}
	return out, nil
}

type fakeImages struct {
	paths []string
	body  []byte
}

func (f *fakeImages) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.body = b
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

type httpStatusErr struct {
	status int
	msg    string
}

func (e *httpStatusErr) Error() string   { return e.msg }
func (e *httpStatusErr) HTTPStatus() int { return e.status }

type fakeDirectory struct {
	users       map[string]string // email -> password
	ids         map[string]string // email -> id
	confirm     bool
	signedOut   []string
	metadata    map[string]any
	metadataErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[string]string{}, ids: map[string]string{}}
}

func (d *fakeDirectory) SignUp(_ context.Context, email, password string, metadata map[string]any) (*entity.Identity, *entity.Session, error) {
	if _, ok := d.users[email]; ok {
		return nil, nil, &httpStatusErr{status: 422, msg: "User already registered"}
	}
	id := "33333333-3333-4333-8333-33333333333" + string(rune('0'+len(d.users)))
	d.users[email] = password
	d.ids[email] = id
	ident := &entity.Identity{ID: id, Email: email, Metadata: metadata}
	if d.confirm {
		return ident, nil, nil
	}
	sess := &entity.Session{AccessToken: "access-" + id, RefreshToken: "refresh-" + id, Identity: *ident}
	sess.Identity.SessionID = "sess-" + id
	return ident, sess, nil
}

func (d *fakeDirectory) SignIn(_ context.Context, email, password string) (*entity.Session, error) {
	if pw, ok := d.users[email]; !ok || pw != password {
		return nil, &httpStatusErr{status: 400, msg: "Invalid login credentials"}
	}
	id := d.ids[email]
	return &entity.Session{
		AccessToken: "access-" + id,
		Identity:    entity.Identity{ID: id, Email: email, SessionID: "sess-" + id},
	}, nil
}

func (d *fakeDirectory) SignOut(_ context.Context, accessToken string) error {
	d.signedOut = append(d.signedOut, accessToken)
	return nil
}

func (d *fakeDirectory) UpdateMetadata(_ context.Context, _ string, metadata map[string]any) error {
	if d.metadataErr != nil {
		return d.metadataErr
	}
	d.metadata = metadata
	return nil
}

type fakeSessions struct {
	events []session.Event
}

func (f *fakeSessions) Publish(_ context.Context, evt session.Event) error {
	f.events = append(f.events, evt)
	return nil
}

var errBoom = errors.New("boom")
