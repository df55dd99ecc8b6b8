package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/metrics"
	"github.com/keebmart/keebmart/internal/model"
	"github.com/keebmart/keebmart/internal/service"
	"github.com/keebmart/keebmart/internal/store"
)

const testSecret = "test-secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, time.Hour)
}

// fakeUserStore is an in-memory service.UserStore keyed by email.
type fakeUserStore struct {
	users map[string]*model.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[user.Email]; ok {
		return store.ErrEmailExists
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	users := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func newTestAuthService(userStore service.UserStore) *service.AuthService {
	return service.NewAuthService(userStore, testTokens(), bcrypt.MinCost, metrics.NewNoop())
}

// fakeDocStore is an in-memory DocumentStore over named collections.
type fakeDocStore struct {
	collections map[string]map[string]model.Document
	err         error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{collections: make(map[string]map[string]model.Document)}
}

func (f *fakeDocStore) coll(name string) map[string]model.Document {
	if f.collections[name] == nil {
		f.collections[name] = make(map[string]model.Document)
	}
	return f.collections[name]
}

func (f *fakeDocStore) InsertDocument(_ context.Context, collection string, doc model.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := bson.NewObjectID().Hex()
	f.coll(collection)[id] = doc
	return id, nil
}

func (f *fakeDocStore) FindDocuments(_ context.Context, collection string, filter bson.M) ([]model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	docs := make([]model.Document, 0)
	for _, doc := range f.coll(collection) {
		match := true
		for k, v := range filter {
			if doc[k] != v {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (f *fakeDocStore) FindDocumentByID(_ context.Context, collection, id string) (model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocStore) UpdateDocumentByID(_ context.Context, collection, id string, fields model.Document) (*model.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, store.ErrInvalidID
	}
	delete(fields, "_id")
	if len(fields) == 0 {
		return nil, store.ErrEmptyUpdate
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		f.coll(collection)[id] = fields
		return &model.UpdateResult{UpsertedCount: 1}, nil
	}
	for k, v := range fields {
		doc[k] = v
	}
	return &model.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeDocStore) DeleteDocumentByID(_ context.Context, collection, id string) error {
	return f.DeleteDocumentMatching(context.Background(), collection, id, nil)
}

func (f *fakeDocStore) DeleteDocumentMatching(_ context.Context, collection, id string, filter bson.M) error {
	if f.err != nil {
		return f.err
	}
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return store.ErrInvalidID
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range filter {
		if doc[k] != v {
			return store.ErrNotFound
		}
	}
	delete(f.coll(collection), id)
	return nil
}
