package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MovieID is an opaque reference to a movie document. Favorite lists hold
// these with no referential integrity, so an id may point at a movie that no
// longer exists.
type MovieID string

type Genre struct {
	Name        string `bson:"name" json:"Name"`
	Description string `bson:"description" json:"Description"`
}

type Director struct {
	Name string `bson:"name" json:"Name"`
	Bio  string `bson:"bio" json:"Bio"`
}

type Movie struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title     string             `bson:"title" json:"Title"`
	Genre     Genre              `bson:"genre" json:"Genre"`
	Director  Director           `bson:"director" json:"Director"`
	Actors    []string           `bson:"actors" json:"Actors"`
	ImagePath string             `bson:"image_path" json:"ImagePath"`
	Featured  bool               `bson:"featured" json:"Featured"`
}

type MovieModel struct {
	Collection *mongo.Collection
}

func (m *MovieModel) GetAll(ctx context.Context) ([]*Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	movies := []*Movie{}
	if err := cursor.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *MovieModel) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var movie Movie
	err := m.Collection.FindOne(ctx, bson.M{"title": title}).Decode(&movie)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &movie, nil
}

// GetGenre returns the genre sub-document of the first movie carrying the
// named genre.
func (m *MovieModel) GetGenre(ctx context.Context, name string) (*Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var movie Movie
	err := m.Collection.FindOne(ctx, bson.M{"genre.name": name}).Decode(&movie)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &movie.Genre, nil
}

func (m *MovieModel) GetDirector(ctx context.Context, name string) (*Director, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var movie Movie
	err := m.Collection.FindOne(ctx, bson.M{"director.name": name}).Decode(&movie)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &movie.Director, nil
}
