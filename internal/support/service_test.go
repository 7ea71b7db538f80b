package support

import (
	"context"
	"testing"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFAQs struct {
	byID map[gocql.UUID]*models.FAQ
}

func newMockFAQs() *mockFAQs { return &mockFAQs{byID: make(map[gocql.UUID]*models.FAQ)} }

func (m *mockFAQs) Create(_ context.Context, f *models.FAQ) error {
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

func (m *mockFAQs) Update(_ context.Context, f *models.FAQ) error {
	cp := *f
	m.byID[f.ID] = &cp
	return nil
}

func (m *mockFAQs) Delete(_ context.Context, id gocql.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *mockFAQs) GetByID(_ context.Context, id gocql.UUID) (*models.FAQ, error) {
	f, ok := m.byID[id]
	if !ok {
		return nil, gocql.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *mockFAQs) List(_ context.Context) ([]models.FAQ, error) {
	var out []models.FAQ
	for _, f := range m.byID {
		out = append(out, *f)
	}
	return out, nil
}

type mockInquiries struct {
	byID map[gocql.UUID]*models.Inquiry
}

func newMockInquiries() *mockInquiries {
	return &mockInquiries{byID: make(map[gocql.UUID]*models.Inquiry)}
}

func (m *mockInquiries) Create(_ context.Context, i *models.Inquiry) error {
	cp := *i
	m.byID[i.ID] = &cp
	return nil
}

func (m *mockInquiries) Update(_ context.Context, i *models.Inquiry) error {
	cp := *i
	m.byID[i.ID] = &cp
	return nil
}

func (m *mockInquiries) GetByID(_ context.Context, id gocql.UUID) (*models.Inquiry, error) {
	i, ok := m.byID[id]
	if !ok {
		return nil, gocql.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (m *mockInquiries) ListByUser(_ context.Context, userID string) ([]models.Inquiry, error) {
	var out []models.Inquiry
	for _, i := range m.byID {
		if i.UserID == userID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *mockInquiries) ListAll(_ context.Context) ([]models.Inquiry, error) {
	var out []models.Inquiry
	for _, i := range m.byID {
		out = append(out, *i)
	}
	return out, nil
}

type mockReplies struct {
	all []models.InquiryReply
}

func (m *mockReplies) Create(_ context.Context, r *models.InquiryReply) error {
	m.all = append(m.all, *r)
	return nil
}

func (m *mockReplies) ListByInquiry(_ context.Context, inquiryID gocql.UUID) ([]models.InquiryReply, error) {
	var out []models.InquiryReply
	for _, r := range m.all {
		if r.InquiryID == inquiryID {
			out = append(out, r)
		}
	}
	return out, nil
}

type cannedResponder struct {
	reply string
}

func (c cannedResponder) AutoReply(context.Context, string, string, string) string {
	return c.reply
}

func newTestService() (*Service, *mockFAQs, *mockInquiries, *mockReplies) {
	faqs := newMockFAQs()
	inquiries := newMockInquiries()
	replies := &mockReplies{}
	svc := NewService(faqs, inquiries, replies, cannedResponder{reply: "Réponse générée."})
	return svc, faqs, inquiries, replies
}

func TestCreateInquiry_StoresAIReplyAndCompletes(t *testing.T) {
	svc, _, inquiries, replies := newTestService()

	inquiry, err := svc.CreateInquiry(context.Background(), "user-1",
		models.SupportCategoryShipping, "Colis en retard", "Ma commande n'est pas arrivée.")
	require.NoError(t, err)

	assert.Equal(t, models.InquiryCompleted, inquiry.Status)

	stored, err := inquiries.GetByID(context.Background(), inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryCompleted, stored.Status)

	require.Len(t, replies.all, 1)
	auto := replies.all[0]
	assert.Equal(t, "Réponse générée.", auto.Content)
	assert.True(t, auto.IsAI)
	assert.True(t, auto.IsAdmin)
	assert.Empty(t, auto.AuthorID)
}

func TestCreateInquiry_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateInquiry(ctx, "user-1", "spam", "Titre", "Contenu")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = svc.CreateInquiry(ctx, "user-1", models.SupportCategoryOther, "", "Contenu")
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = svc.CreateInquiry(ctx, "user-1", models.SupportCategoryOther, "Titre", "")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestGetInquiry_Ownership(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	inquiry, err := svc.CreateInquiry(ctx, "user-1", models.SupportCategoryOrder, "Titre", "Contenu")
	require.NoError(t, err)

	detail, err := svc.GetInquiry(ctx, "user-1", inquiry.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Replies, 1)

	_, err = svc.GetInquiry(ctx, "intrus", inquiry.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetInquiry(ctx, "user-1", gocql.TimeUUID())
	assert.ErrorIs(t, err, ErrInquiryNotFound)
}

func TestAdminReply_MovesSubmittedToInProgress(t *testing.T) {
	svc, _, inquiries, replies := newTestService()
	ctx := context.Background()

	inquiry, err := svc.CreateInquiry(ctx, "user-1", models.SupportCategoryPayment, "Titre", "Contenu")
	require.NoError(t, err)

	// Remise en soumis par l'admin, comme pour une réouverture.
	_, err = svc.AdminSetStatus(ctx, inquiry.ID, models.InquirySubmitted)
	require.NoError(t, err)

	reply, err := svc.AdminReply(ctx, "admin-1", inquiry.ID, "Nous vous remboursons.")
	require.NoError(t, err)
	assert.True(t, reply.IsAdmin)
	assert.False(t, reply.IsAI)
	assert.Equal(t, "admin-1", reply.AuthorID)

	stored, err := inquiries.GetByID(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryInProgress, stored.Status)

	// Deux réponses : l'automatique puis celle de l'agent.
	got, err := replies.ListByInquiry(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAdminReply_KeepsTerminalStatus(t *testing.T) {
	svc, _, inquiries, _ := newTestService()
	ctx := context.Background()

	inquiry, err := svc.CreateInquiry(ctx, "user-1", models.SupportCategoryOther, "Titre", "Contenu")
	require.NoError(t, err)
	require.Equal(t, models.InquiryCompleted, inquiry.Status)

	_, err = svc.AdminReply(ctx, "admin-1", inquiry.ID, "Complément d'information.")
	require.NoError(t, err)

	stored, err := inquiries.GetByID(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryCompleted, stored.Status, "une demande close le reste")
}

func TestAdminListInquiries_StatusFilter(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.CreateInquiry(ctx, "user-1", models.SupportCategoryOrder, "A", "...")
	require.NoError(t, err)
	_, err = svc.CreateInquiry(ctx, "user-2", models.SupportCategoryOrder, "B", "...")
	require.NoError(t, err)

	_, err = svc.AdminSetStatus(ctx, a.ID, models.InquiryOnHold)
	require.NoError(t, err)

	onHold, err := svc.AdminListInquiries(ctx, models.InquiryOnHold)
	require.NoError(t, err)
	require.Len(t, onHold, 1)
	assert.Equal(t, "A", onHold[0].Title)

	all, err := svc.AdminListInquiries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.AdminListInquiries(ctx, "archived")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestFAQ_PublicListFiltersUnpublished(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateFAQ(ctx, models.SupportCategoryShipping, "Délais ?", "48h.", true)
	require.NoError(t, err)
	_, err = svc.CreateFAQ(ctx, models.SupportCategoryShipping, "Brouillon", "...", false)
	require.NoError(t, err)
	_, err = svc.CreateFAQ(ctx, models.SupportCategoryPayment, "CB ?", "Oui.", true)
	require.NoError(t, err)

	public, err := svc.ListFAQ(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	shipping, err := svc.ListFAQ(ctx, models.SupportCategoryShipping, false)
	require.NoError(t, err)
	require.Len(t, shipping, 1)
	assert.Equal(t, "Délais ?", shipping[0].Question)

	admin, err := svc.ListFAQ(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, admin, 3)
}

func TestFAQ_UpdateAndDelete(t *testing.T) {
	svc, faqs, _, _ := newTestService()
	ctx := context.Background()

	f, err := svc.CreateFAQ(ctx, models.SupportCategoryAccount, "Question", "Réponse", true)
	require.NoError(t, err)

	time.Sleep(time.Millisecond) // updated_at doit avancer

	updated, err := svc.UpdateFAQ(ctx, f.ID, models.SupportCategoryAccount, "Question", "Réponse corrigée", false)
	require.NoError(t, err)
	assert.Equal(t, "Réponse corrigée", updated.Answer)
	assert.False(t, updated.IsPublished)
	assert.True(t, updated.UpdatedAt.After(f.UpdatedAt))

	require.NoError(t, svc.DeleteFAQ(ctx, f.ID))
	_, err = faqs.GetByID(ctx, f.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, svc.DeleteFAQ(ctx, f.ID), ErrFAQNotFound)
}
