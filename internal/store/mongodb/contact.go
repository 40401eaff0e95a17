// Package mongodb serves users and contacts from MongoDB collections.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// searchScan bounds how many regex matches are ranked in memory.
const searchScan = 200

type ContactStore struct {
	coll *mongo.Collection
}

func NewContactStore(db *mongo.Database, collection string) *ContactStore {
	return &ContactStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique email index and the name index.
func (s *ContactStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "full_name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Seed inserts contacts when the collection is empty.
func (s *ContactStore) Seed(ctx context.Context, contacts []model.Contact) error {
	n, err := s.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("count contacts: %w", err)
	}
	if n > 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, 0, len(contacts))
	for _, c := range contacts {
		c.Email = strings.ToLower(c.Email)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}
		docs = append(docs, c)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed contacts: %w", err)
	}
	zap.L().Info("Seeded demo contacts", zap.Int("count", len(docs)))
	return nil
}

func (s *ContactStore) Lookup(ctx context.Context, email string) (model.Contact, error) {
	var c model.Contact
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Contact{}, store.ErrNotFound
		}
		return model.Contact{}, fmt.Errorf("lookup contact: %w", err)
	}
	return c, nil
}

func (s *ContactStore) Search(ctx context.Context, q string) ([]model.Contact, error) {
	pattern := bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"full_name": pattern},
		bson.M{"department": pattern},
		bson.M{"job_title": pattern},
		bson.M{"company": pattern},
	}}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}).SetLimit(searchScan))
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	var out []model.Contact
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return store.RankContacts(out, q), nil
}

func (s *ContactStore) Paginate(ctx context.Context, page, size int) (model.ContactPage, error) {
	res := model.ContactPage{Page: page, Size: size, Contacts: []model.Contact{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.coll.CountDocuments(gctx, bson.M{})
		res.Total = int(n)
		return err
	})
	g.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "full_name", Value: 1}}).
			SetSkip(int64((page - 1) * size)).
			SetLimit(int64(size))
		cur, err := s.coll.Find(gctx, bson.M{}, opts)
		if err != nil {
			return err
		}
		return cur.All(gctx, &res.Contacts)
	})
	if err := g.Wait(); err != nil {
		return model.ContactPage{}, fmt.Errorf("paginate contacts: %w", err)
	}
	return res, nil
}

func (s *ContactStore) Stats(ctx context.Context) (model.ContactStats, error) {
	stats := model.ContactStats{DepartmentBreakdown: []model.DepartmentCount{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.coll.CountDocuments(gctx, bson.M{})
		stats.TotalContacts = int(n)
		return err
	})
	g.Go(func() error {
		n, err := s.coll.CountDocuments(gctx, bson.M{"phone_number": bson.M{"$nin": bson.A{nil, ""}}})
		stats.ContactsWithPhone = int(n)
		return err
	})
	g.Go(func() error {
		var companies []string
		err := s.coll.Distinct(gctx, "company", bson.M{"company": bson.M{"$nin": bson.A{nil, ""}}}).Decode(&companies)
		stats.CompanyCount = len(companies)
		return err
	})
	g.Go(func() error {
		cur, err := s.coll.Aggregate(gctx, mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"department": bson.M{"$nin": bson.A{nil, ""}}}}},
			{{Key: "$group", Value: bson.M{"_id": "$department", "count": bson.M{"$sum": 1}}}},
			{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		})
		if err != nil {
			return err
		}
		return cur.All(gctx, &stats.DepartmentBreakdown)
	})
	if err := g.Wait(); err != nil {
		return model.ContactStats{}, fmt.Errorf("contact stats: %w", err)
	}
	stats.DepartmentCount = len(stats.DepartmentBreakdown)
	return stats, nil
}

func (s *ContactStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
