package main

import (
	"github.com/labstack/echo/v4"
)

func (app *application) routes(e *echo.Echo) {
	e.GET("/", app.homeHandler)
	e.File("/documentation", "public/documentation.html")
	e.Static("/public", "public")

	e.POST("/login", app.loginHandler)
	e.POST("/users", app.registerUserHandler)

	e.GET("/movies", app.listMoviesHandler, app.RequireAuthenticatedUser)
	e.GET("/movies/titles", app.listMovieTitlesHandler, app.RequireAuthenticatedUser)
	e.GET("/movies/:Title", app.showMovieHandler, app.RequireAuthenticatedUser)
	e.GET("/movies/genres/:genreName", app.showGenreHandler, app.RequireAuthenticatedUser)
	e.GET("/movies/directors/:directorName", app.showDirectorHandler, app.RequireAuthenticatedUser)

	e.GET("/users", app.listUsersHandler, app.RequireAuthenticatedUser)
	e.GET("/users/:Username", app.showUserHandler, app.RequireAuthenticatedUser)
	e.PUT("/users/:Username", app.updateUserHandler, app.RequireAuthenticatedUser)
	e.DELETE("/users/:Username", app.deleteUserHandler, app.RequireAuthenticatedUser)

	e.PUT("/users/:Username/movies/:MovieID", app.addFavoriteHandler, app.RequireAuthenticatedUser)
	e.DELETE("/users/:Username/movies/:MovieID", app.removeFavoriteHandler, app.RequireAuthenticatedUser)
}
