package data

import (
	"context"
	"errors"
	"time"

	"flix/internal/validator"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Work factor for bcrypt. Kept moderate so registration stays responsive
// while still being expensive to brute force.
const passwordCost = 10

var AnonymousUser = &User{}

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username       string             `bson:"username" json:"Username"`
	Password       string             `bson:"password" json:"-"`
	Email          string             `bson:"email" json:"Email"`
	Birthday       *time.Time         `bson:"birthday,omitempty" json:"Birthday,omitempty"`
	FavoriteMovies []MovieID          `bson:"favorite_movies" json:"FavoriteMovies"`
}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// SetPassword replaces the stored credential with a one-way hash of the
// plaintext. The plaintext is never retained.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// PasswordMatches reports whether the plaintext matches the stored hash. A
// malformed or corrupt hash is indistinguishable from a mismatch: callers
// must treat both as authentication failure.
func (u *User) PasswordMatches(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

func ValidateUsername(v *validator.Validator, username string) {
	v.Check(username != "", "Username", "Username is required")
	v.Check(validator.MinChars(username, 5), "Username", "Username must be at least 5 characters long")
	v.Check(validator.Matches(username, validator.UsernameRX), "Username", "Username contains non alphanumeric characters - not allowed")
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "Email", "Email must be provided")
	v.Check(validator.Matches(email, validator.EmailRX), "Email", "Email does not appear to be valid")
}

func ValidatePasswordPlaintext(v *validator.Validator, password string) {
	v.Check(password != "", "Password", "Password is required")
	v.Check(validator.MaxChars(password, 72), "Password", "Password cannot be more than 72 characters")
}

type UserModel struct {
	Collection *mongo.Collection
}

func (m *UserModel) Insert(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := m.Collection.FindOne(ctx, bson.M{"username": user.Username}).Err()
	if err == nil {
		return ErrDuplicateUsername
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []MovieID{}
	}

	res, err := m.Collection.InsertOne(ctx, user)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (m *UserModel) GetAll(ctx context.Context) ([]*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err := m.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

func (m *UserModel) GetByID(ctx context.Context, id string) (*User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoRecordFound
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user User
	err = m.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

func (m *UserModel) Update(ctx context.Context, username string, user *User) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"username": user.Username,
		"password": user.Password,
		"email":    user.Email,
		"birthday": user.Birthday,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated User
	err := m.Collection.FindOneAndUpdate(ctx, bson.M{"username": username}, update, opts).Decode(&updated)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &updated, nil
}

func (m *UserModel) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := m.Collection.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoRecordFound
	}
	return nil
}

// AddFavorite appends the movie id to the user's favorites. The push is
// guarded by a $ne filter so a successful add leaves the id in the list
// exactly once; a duplicate add is rejected with ErrDuplicateFavorite rather
// than silently accepted.
func (m *UserModel) AddFavorite(ctx context.Context, username string, movieID MovieID) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	filter := bson.M{"username": username, "favorite_movies": bson.M{"$ne": movieID}}
	update := bson.M{"$push": bson.M{"favorite_movies": movieID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := m.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match means either the user is missing or the id is already a
	// favorite. Tell them apart for the caller.
	err = m.Collection.FindOne(ctx, bson.M{"username": username}).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNoRecordFound
	case err != nil:
		return nil, err
	default:
		return nil, ErrDuplicateFavorite
	}
}

// RemoveFavorite pulls the movie id from the user's favorites. Removing an id
// that is not present succeeds and leaves the list unchanged.
func (m *UserModel) RemoveFavorite(ctx context.Context, username string, movieID MovieID) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	update := bson.M{"$pull": bson.M{"favorite_movies": movieID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user User
	err := m.Collection.FindOneAndUpdate(ctx, bson.M{"username": username}, update, opts).Decode(&user)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
