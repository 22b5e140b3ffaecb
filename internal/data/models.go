package data

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNoRecordFound     = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateFavorite = errors.New("movie already in favorites")
)

// Movies is read-only: the catalog is seeded externally and no endpoint
// mutates it.
type Movies interface {
	GetAll(ctx context.Context) ([]*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetGenre(ctx context.Context, name string) (*Genre, error)
	GetDirector(ctx context.Context, name string) (*Director, error)
}

type Users interface {
	Insert(ctx context.Context, user *User) error
	GetAll(ctx context.Context) ([]*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, username string, user *User) (*User, error)
	Delete(ctx context.Context, username string) error
	AddFavorite(ctx context.Context, username string, movieID MovieID) (*User, error)
	RemoveFavorite(ctx context.Context, username string, movieID MovieID) (*User, error)
}

type Models struct {
	Movies Movies
	Users  Users
}

func NewModels(client *mongo.Client, database string) Models {
	db := client.Database(database)
	return Models{
		Movies: &MovieModel{Collection: db.Collection("movies")},
		Users:  &UserModel{Collection: db.Collection("users")},
	}
}
