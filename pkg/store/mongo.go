package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/graph"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "gmplayout"
	DefaultMongoCollection = "layouts"
	mongoConnectTimeout    = 10 * time.Second
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string // Default: "gmplayout"
	Collection string // Default: "layouts"
}

// MongoStore stores layouts as node-link documents in a MongoDB collection.
// Driver failures are reported as EXTERNAL_DEPENDENCY errors.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored shape of a layout.
type document struct {
	ID        string      `bson:"_id"`
	Name      string      `bson:"name"`
	Graph     graph.Graph `bson:"graph"`
	Rooms     int         `bson:"rooms"`
	Edges     int         `bson:"relationships"`
	CreatedAt time.Time   `bson:"created_at"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, gerrors.New(gerrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func toDocument(l *facility.Layout) document {
	return document{
		ID:        l.ID,
		Name:      l.Name,
		Graph:     graph.FromLayout(l),
		Rooms:     len(l.Rooms),
		Edges:     len(l.Relationships),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func fromDocument(d document) (*facility.Layout, error) {
	d.Graph.ID = d.ID
	d.Graph.Name = d.Name
	l, err := graph.ToLayout(d.Graph)
	if err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", d.ID, err)
	}
	l.CreatedAt = d.CreatedAt
	l.UpdatedAt = d.UpdatedAt
	return l, nil
}

func (s *MongoStore) Save(ctx context.Context, l *facility.Layout) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID}, toDocument(l), options.Replace().SetUpsert(true))
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeExternal, err, "save layout %s", l.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*facility.Layout, error) {
	var d document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "get layout %s", id)
	}
	return fromDocument(d)
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "rooms": 1, "relationships": 1, "updated_at": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "list layouts")
	}
	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "list layouts")
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeExternal, err, "delete layout %s", id)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Match narrows candidates server-side with matchFilter, then evaluates the
// full pattern on each decoded layout.
func (s *MongoStore) Match(ctx context.Context, p Pattern) ([]Match, error) {
	cur, err := s.coll.Find(ctx, matchFilter(p), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "match layouts")
	}
	defer cur.Close(ctx)

	var out []Match
	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "decode layout")
		}
		l, err := fromDocument(d)
		if err != nil {
			continue
		}
		out = append(out, MatchLayout(l, p)...)
	}
	if err := cur.Err(); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeExternal, err, "match layouts")
	}
	return out, nil
}

// matchFilter builds the document prefilter for p. Name patterns are
// substring matches and are left to MatchLayout.
func matchFilter(p Pattern) bson.M {
	filter := bson.M{}
	var all []bson.M
	if m := nodeFilter(p.Room); len(m) > 0 {
		all = append(all, bson.M{"graph.nodes": bson.M{"$elemMatch": m}})
	}
	if p.Neighbor != nil {
		if m := nodeFilter(*p.Neighbor); len(m) > 0 {
			all = append(all, bson.M{"graph.nodes": bson.M{"$elemMatch": m}})
		}
		if p.Relation != "" {
			all = append(all, bson.M{"graph.edges.type": string(p.Relation)})
		}
	}
	if len(all) > 0 {
		filter["$and"] = all
	}
	return filter
}

func nodeFilter(p RoomPattern) bson.M {
	m := bson.M{}
	if p.Type != "" {
		m["type"] = p.Type
	}
	if p.Category != "" {
		m["category"] = string(p.Category)
	}
	if p.Class != facility.ClassNone {
		m["class"] = string(p.Class)
	}
	return m
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
