package support

import (
	"context"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Les tables de support vivent dans le keyspace users : elles sont
// rattachées au compte client, pas au flux de commandes.

type ScyllaFAQRepository struct{}

func (ScyllaFAQRepository) Create(ctx context.Context, f *models.FAQ) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`INSERT INTO faqs (faq_id, category, question, answer, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Category, f.Question, f.Answer, f.IsPublished, f.CreatedAt, f.UpdatedAt).
		WithContext(ctx).Exec()
}

func (ScyllaFAQRepository) Update(ctx context.Context, f *models.FAQ) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`UPDATE faqs SET category = ?, question = ?, answer = ?, is_published = ?, updated_at = ?
		WHERE faq_id = ?`,
		f.Category, f.Question, f.Answer, f.IsPublished, f.UpdatedAt, f.ID).
		WithContext(ctx).Exec()
}

func (ScyllaFAQRepository) Delete(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`DELETE FROM faqs WHERE faq_id = ?`, id).WithContext(ctx).Exec()
}

func (ScyllaFAQRepository) GetByID(ctx context.Context, id gocql.UUID) (*models.FAQ, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var f models.FAQ
	err = session.Query(`SELECT faq_id, category, question, answer, is_published, created_at, updated_at
		FROM faqs WHERE faq_id = ?`, id).WithContext(ctx).
		Scan(&f.ID, &f.Category, &f.Question, &f.Answer, &f.IsPublished, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List scanne la table entière : une FAQ se compte en dizaines d'entrées.
func (ScyllaFAQRepository) List(ctx context.Context) ([]models.FAQ, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT faq_id, category, question, answer, is_published, created_at, updated_at
		FROM faqs`).WithContext(ctx).Iter()

	var faqs []models.FAQ
	var f models.FAQ
	for iter.Scan(&f.ID, &f.Category, &f.Question, &f.Answer, &f.IsPublished, &f.CreatedAt, &f.UpdatedAt) {
		faqs = append(faqs, f)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return faqs, nil
}

type ScyllaInquiryRepository struct{}

func (ScyllaInquiryRepository) Create(ctx context.Context, i *models.Inquiry) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO inquiries (inquiry_id, user_id, category, title, content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Category, i.Title, i.Content, i.Status, i.CreatedAt, i.UpdatedAt)
	batch.Query(`INSERT INTO inquiries_by_user (user_id, created_at, inquiry_id, category, title, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		i.UserID, i.CreatedAt, i.ID, i.Category, i.Title, i.Status)
	return session.ExecuteBatch(batch)
}

func (ScyllaInquiryRepository) Update(ctx context.Context, i *models.Inquiry) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`UPDATE inquiries SET status = ?, title = ?, content = ?, updated_at = ? WHERE inquiry_id = ?`,
		i.Status, i.Title, i.Content, i.UpdatedAt, i.ID)
	batch.Query(`UPDATE inquiries_by_user SET status = ?, title = ? WHERE user_id = ? AND created_at = ? AND inquiry_id = ?`,
		i.Status, i.Title, i.UserID, i.CreatedAt, i.ID)
	return session.ExecuteBatch(batch)
}

func (ScyllaInquiryRepository) GetByID(ctx context.Context, id gocql.UUID) (*models.Inquiry, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var i models.Inquiry
	err = session.Query(`SELECT inquiry_id, user_id, category, title, content, status, created_at, updated_at
		FROM inquiries WHERE inquiry_id = ?`, id).WithContext(ctx).
		Scan(&i.ID, &i.UserID, &i.Category, &i.Title, &i.Content, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (ScyllaInquiryRepository) ListByUser(ctx context.Context, userID string) ([]models.Inquiry, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT inquiry_id, category, title, status, created_at
		FROM inquiries_by_user WHERE user_id = ? ORDER BY created_at DESC`, userID).
		WithContext(ctx).Iter()

	var inquiries []models.Inquiry
	var i models.Inquiry
	for iter.Scan(&i.ID, &i.Category, &i.Title, &i.Status, &i.CreatedAt) {
		i.UserID = userID
		inquiries = append(inquiries, i)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return inquiries, nil
}

// ListAll est réservé à l'admin ; le volume de demandes reste scannable.
func (ScyllaInquiryRepository) ListAll(ctx context.Context) ([]models.Inquiry, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT inquiry_id, user_id, category, title, content, status, created_at, updated_at
		FROM inquiries`).WithContext(ctx).Iter()

	var inquiries []models.Inquiry
	var i models.Inquiry
	for iter.Scan(&i.ID, &i.UserID, &i.Category, &i.Title, &i.Content, &i.Status, &i.CreatedAt, &i.UpdatedAt) {
		inquiries = append(inquiries, i)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return inquiries, nil
}

type ScyllaReplyRepository struct{}

func (ScyllaReplyRepository) Create(ctx context.Context, r *models.InquiryReply) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`INSERT INTO inquiry_replies (inquiry_id, created_at, reply_id, author_id, content, is_admin, is_ai)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.InquiryID, r.CreatedAt, r.ID, r.AuthorID, r.Content, r.IsAdmin, r.IsAI).
		WithContext(ctx).Exec()
}

func (ScyllaReplyRepository) ListByInquiry(ctx context.Context, inquiryID gocql.UUID) ([]models.InquiryReply, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT reply_id, inquiry_id, author_id, content, is_admin, is_ai, created_at
		FROM inquiry_replies WHERE inquiry_id = ? ORDER BY created_at ASC`, inquiryID).
		WithContext(ctx).Iter()

	var replies []models.InquiryReply
	var r models.InquiryReply
	for iter.Scan(&r.ID, &r.InquiryID, &r.AuthorID, &r.Content, &r.IsAdmin, &r.IsAI, &r.CreatedAt) {
		replies = append(replies, r)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return replies, nil
}
