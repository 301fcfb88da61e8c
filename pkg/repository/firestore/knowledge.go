package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// knowledgeDoc is the Firestore document representation of model.Knowledge.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search works.
type knowledgeDoc struct {
	ID        model.KnowledgeID  `firestore:"ID"`
	UserID    string             `firestore:"UserID"`
	Title     string             `firestore:"Title"`
	URL       string             `firestore:"URL"`
	Content   string             `firestore:"Content"`
	Subject   string             `firestore:"Subject"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
	UpdatedAt time.Time          `firestore:"UpdatedAt"`
}

func toKnowledgeDoc(k *model.Knowledge) *knowledgeDoc {
	doc := &knowledgeDoc{
		ID:        k.ID,
		UserID:    k.UserID,
		Title:     k.Title,
		URL:       k.URL,
		Content:   k.Content,
		Subject:   k.Subject,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
	if len(k.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(k.Embedding)
	}
	return doc
}

func fromKnowledgeDoc(d *knowledgeDoc) *model.Knowledge {
	k := &model.Knowledge{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		URL:       d.URL,
		Content:   d.Content,
		Subject:   d.Subject,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		k.Embedding = []float32(d.Embedding)
	}
	return k
}

func docToKnowledge(doc *firestore.DocumentSnapshot) (*model.Knowledge, error) {
	var d knowledgeDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromKnowledgeDoc(&d), nil
}

type knowledgeRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newKnowledgeRepository(client *firestore.Client) *knowledgeRepository {
	return &knowledgeRepository{
		client: client,
	}
}

func (r *knowledgeRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "knowledges")
}

func (r *knowledgeRepository) Put(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	if knowledge.UserID == "" {
		return nil, goerr.New("user ID is required")
	}

	now := time.Now().UTC()
	if knowledge.ID == "" {
		knowledge.ID = model.NewKnowledgeID()
		knowledge.CreatedAt = now
	}
	knowledge.UpdatedAt = now

	docRef := r.collection().Doc(string(knowledge.ID))
	if _, err := docRef.Set(ctx, toKnowledgeDoc(knowledge)); err != nil {
		return nil, goerr.Wrap(err, "failed to store knowledge", goerr.V("id", knowledge.ID))
	}

	return knowledge, nil
}

func (r *knowledgeRepository) Search(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.Knowledge, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}

	query := r.collection().
		Where("UserID", "==", userID).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := query.Documents(ctx)
	defer iter.Stop()

	knowledges := make([]*model.Knowledge, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate knowledges", goerr.V("userID", userID))
		}

		k, err := docToKnowledge(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal knowledge")
		}

		knowledges = append(knowledges, k)
	}

	return knowledges, nil
}

func (r *knowledgeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	docs, err := r.collection().Where("UserID", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count knowledges", goerr.V("userID", userID))
	}
	return len(docs), nil
}
