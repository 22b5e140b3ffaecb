package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"flix/internal/auth"
	"flix/internal/data"
	"flix/internal/validator"

	"github.com/labstack/echo/v4"
)

func (app *application) homeHandler(c echo.Context) error {
	return c.String(http.StatusOK, "Please enjoy the show!")
}

func (app *application) listMoviesHandler(c echo.Context) error {
	movies, err := app.models.Movies.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{"movies": movies})
}

func (app *application) listMovieTitlesHandler(c echo.Context) error {
	movies, err := app.models.Movies.GetAll(c.Request().Context())
	if err != nil {
		return err
	}

	titles := []envelope{}
	for _, movie := range movies {
		titles = append(titles, envelope{"Title": movie.Title})
	}
	return c.JSON(http.StatusOK, envelope{"titles": titles})
}

func (app *application) showMovieHandler(c echo.Context) error {
	movie, err := app.models.Movies.GetByTitle(c.Request().Context(), c.Param("Title"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "Movie not found")
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, envelope{"movie": movie})
}

func (app *application) showGenreHandler(c echo.Context) error {
	genre, err := app.models.Movies.GetGenre(c.Request().Context(), c.Param("genreName"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "Genre not found")
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, envelope{"genre": genre})
}

func (app *application) showDirectorHandler(c echo.Context) error {
	director, err := app.models.Movies.GetDirector(c.Request().Context(), c.Param("directorName"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "Director not found")
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, envelope{"director": director})
}

func (app *application) listUsersHandler(c echo.Context) error {
	users, err := app.models.Users.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{"users": users})
}

func (app *application) showUserHandler(c echo.Context) error {
	user, err := app.models.Users.GetByUsername(c.Request().Context(), c.Param("Username"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, envelope{"user": user})
}

func (app *application) registerUserHandler(c echo.Context) error {
	var input struct {
		Username string     `json:"Username"`
		Password string     `json:"Password"`
		Email    string     `json:"Email"`
		Birthday *time.Time `json:"Birthday"`
	}

	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := validator.New()
	data.ValidateUsername(v, input.Username)
	data.ValidatePasswordPlaintext(v, input.Password)
	data.ValidateEmail(v, input.Email)

	if !v.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, v.Errors)
	}

	user := &data.User{
		Username:       input.Username,
		Email:          input.Email,
		Birthday:       input.Birthday,
		FavoriteMovies: []data.MovieID{},
	}

	// Hash before the uniqueness check, so the cost is paid even for a
	// rejected duplicate.
	if err := user.SetPassword(input.Password); err != nil {
		return err
	}

	err := app.models.Users.Insert(c.Request().Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s already exists", input.Username))
		default:
			return err
		}
	}

	if app.config.smtp.host != "" {
		recipient := user.Email
		username := user.Username
		app.background(func() {
			err := app.mailer.Send(recipient, "user_welcome.tmpl", map[string]interface{}{
				"Username": username,
			})
			if err != nil {
				app.logger.Error("failed to send welcome email", "err", err.Error())
			}
		})
	}

	return c.JSON(http.StatusCreated, envelope{
		"message": fmt.Sprintf("%s has been added successfully", user.Username),
		"user":    user,
	})
}

func (app *application) loginHandler(c echo.Context) error {
	user, err := app.local.Authenticate(c.Request().Context(), c.Request())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoCredentials):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Username and Password must be provided")
		case errors.Is(err, auth.ErrIncorrectUsername), errors.Is(err, auth.ErrIncorrectPassword):
			app.logger.Info("login rejected", "reason", err.Error())
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication credentials")
		default:
			return err
		}
	}

	token, err := app.tokens.Issue(user.ID.Hex())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{"user": user, "token": token})
}

func (app *application) updateUserHandler(c echo.Context) error {
	var input struct {
		Username string     `json:"Username"`
		Password string     `json:"Password"`
		Email    string     `json:"Email"`
		Birthday *time.Time `json:"Birthday"`
	}

	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := validator.New()
	data.ValidateUsername(v, input.Username)
	data.ValidatePasswordPlaintext(v, input.Password)
	data.ValidateEmail(v, input.Email)

	if !v.Valid() {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, v.Errors)
	}

	user := &data.User{
		Username: input.Username,
		Email:    input.Email,
		Birthday: input.Birthday,
	}

	if err := user.SetPassword(input.Password); err != nil {
		return err
	}

	updated, err := app.models.Users.Update(c.Request().Context(), c.Param("Username"), user)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"user": updated})
}

func (app *application) deleteUserHandler(c echo.Context) error {
	username := c.Param("Username")

	err := app.models.Users.Delete(c.Request().Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s was not found", username))
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{"message": fmt.Sprintf("%s was deleted", username)})
}

func (app *application) addFavoriteHandler(c echo.Context) error {
	username := c.Param("Username")
	movieID := data.MovieID(c.Param("MovieID"))

	user, err := app.models.Users.AddFavorite(c.Request().Context(), username, movieID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, data.ErrDuplicateFavorite):
			return echo.NewHTTPError(http.StatusConflict, "Movie already exists in favorites")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{
		"message": fmt.Sprintf("%s has been added to favorites", movieID),
		"user":    user,
	})
}

func (app *application) removeFavoriteHandler(c echo.Context) error {
	username := c.Param("Username")
	movieID := data.MovieID(c.Param("MovieID"))

	user, err := app.models.Users.RemoveFavorite(c.Request().Context(), username, movieID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoRecordFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, envelope{
		"message": fmt.Sprintf("%s has been removed from favorites", movieID),
		"user":    user,
	})
}
