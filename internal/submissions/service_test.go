package submissions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-site/internal/mail"
	"github.com/goliatone/go-site/internal/store"
	"github.com/goliatone/go-site/internal/validation"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg mail.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

type staticGate map[string]bool

func (g staticGate) Enabled(_ context.Context, name string) bool {
	return g[name]
}

type failingAppendStore struct {
	*store.MemoryStore
}

func (failingAppendStore) Append(context.Context, string, store.Record) error {
	return errors.New("disk full")
}

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, st store.Store, opts ...Option) (*Service, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	var n int
	base := []Option{
		WithNotifier(notifier),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return "sub-" + string(rune('0'+n))
		}),
	}
	return NewService(st, append(base, opts...)...), notifier
}

func validLead() Lead {
	return Lead{Name: "Ada", Email: "ada@example.com", Company: "Analytical", Interest: "whitepaper", Reference: "zero-trust"}
}

func TestSubmitLeadStoresAndNotifies(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc, notifier := newTestService(t, st)

	receipt, err := svc.SubmitLead(ctx, validLead())
	if err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	if receipt.ID != "sub-1" || receipt.Type != KindLead || !receipt.Stored || !receipt.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	records, _ := st.ReadCollection(ctx, "leads")
	if len(records) != 1 || records[0]["status"] != "new" || records[0]["type"] != "lead" || records[0]["company"] != "Analytical" {
		t.Fatalf("unexpected stored records %#v", records)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.messages))
	}
	msg := notifier.messages[0]
	if msg.Subject != "New lead: Ada (Analytical)" || msg.ReplyTo != "ada@example.com" || msg.Reference != "sub-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "Reference: zero-trust\n") || strings.Contains(msg.Body, "Phone:") {
		t.Fatalf("unexpected body %q", msg.Body)
	}
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, store.NewMemoryStore())

	_, err := svc.SubmitContact(ctx, Contact{Name: "Ada", Email: "not-an-email"})
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	issues := validation.Issues(err)
	if len(issues) != 2 || issues[0].Location != "/email" || issues[1].Location != "/message" {
		t.Fatalf("unexpected issues %#v", issues)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no notification for invalid submission")
	}
}

func TestSubmitCareerChecksAnswersSchema(t *testing.T) {
	ctx := context.Background()
	schema, err := validation.Compile(map[string]any{
		"fields": []any{
			map[string]any{"name": "years", "type": "integer", "required": true},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	svc, notifier := newTestService(t, store.NewMemoryStore(), WithCareerSchema(schema))

	application := CareerApplication{
		Name:      "Grace",
		Email:     "grace@example.com",
		Position:  "Engineer",
		ResumeURL: "https://example.com/cv.pdf",
		Answers:   map[string]any{"years": "lots"},
	}
	_, err = svc.SubmitCareer(ctx, application)
	issues := validation.Issues(err)
	if len(issues) == 0 || issues[0].Location != "/answers/years" {
		t.Fatalf("expected answers issue, got %v %#v", err, issues)
	}

	application.Answers = map[string]any{"years": 7}
	receipt, err := svc.SubmitCareer(ctx, application)
	if err != nil {
		t.Fatalf("SubmitCareer: %v", err)
	}
	if !strings.Contains(notifier.messages[0].Body, "years: 7\n") {
		t.Fatalf("expected answers in notification, got %q", notifier.messages[0].Body)
	}

	got, err := svc.Get(ctx, KindCareer, receipt.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	app := got.(*CareerApplication)
	if app.Position != "Engineer" || app.Answers["years"] != float64(7) {
		t.Fatalf("unexpected application %+v", app)
	}
}

func TestSubmitStoreFailureStillNotifies(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, failingAppendStore{store.NewMemoryStore()})

	receipt, err := svc.SubmitLead(ctx, validLead())
	if err != nil {
		t.Fatalf("expected submission to be accepted, got %v", err)
	}
	if receipt.Stored {
		t.Fatalf("expected Stored=false when persistence fails")
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected notification despite storage failure")
	}
}

func TestSubmitRespectsGate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemoryStore(), WithGate(staticGate{"forms.leads": true}))

	if _, err := svc.SubmitLead(ctx, validLead()); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}
	_, err := svc.SubmitContact(ctx, Contact{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	if !errors.Is(err, ErrFormDisabled) {
		t.Fatalf("expected ErrFormDisabled, got %v", err)
	}
}

func TestListAndUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemoryStore())

	first, _ := svc.SubmitLead(ctx, validLead())
	second := validLead()
	second.Name = "Charles"
	if _, err := svc.SubmitLead(ctx, second); err != nil {
		t.Fatalf("SubmitLead: %v", err)
	}

	items, err := svc.List(ctx, KindLead)
	if err != nil || len(items) != 2 {
		t.Fatalf("List: %d %v", len(items), err)
	}
	if items[1].(*Lead).Name != "Charles" {
		t.Fatalf("expected arrival order, got %+v", items)
	}

	updated, err := svc.UpdateStatus(ctx, KindLead, first.ID, StatusContacted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	meta := updated.Meta()
	if meta.Status != StatusContacted || meta.UpdatedAt == nil || !meta.UpdatedAt.Equal(testNow) {
		t.Fatalf("unexpected envelope %+v", meta)
	}

	var notFound *NotFoundError
	if _, err := svc.UpdateStatus(ctx, KindLead, "missing", StatusArchived); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, KindLead, first.ID, "lost"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.List(ctx, Kind("bogus")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"leads": KindLead, "Contact": KindContact, "applications": KindCareer, "careers": KindCareer}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("newsletter"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
