package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/user"
)

type reviewApi struct {
	svc     review.Service
	userSvc user.Service
}

func registerReviewAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc review.Service, userSvc user.Service) {
	api := reviewApi{svc: svc, userSvc: userSvc}

	// course reviews are public
	g.GET("/courses/:id/reviews", api.queryByCourse)

	rg := g.Group("/reviews", jwt)
	rg.POST("", api.create)
	rg.GET("", api.queryAll, adminMiddleware())
	rg.GET("/:id", api.retrieve)
	rg.DELETE("", api.destroyMultiple, adminMiddleware())
}

// Handlers

func (api *reviewApi) queryByCourse(ctx echo.Context) error {
	reviews, err := api.svc.QueryByCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying course reviews")
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) create(ctx echo.Context) error {
	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}

	// a review is always authored by its caller
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() {
		data.UserID = ctxUsr.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	rev, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *reviewApi) queryAll(ctx echo.Context) error {
	reviews, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) retrieve(ctx echo.Context) error {
	rev, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == review.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting review")
	}
	return ctx.JSON(http.StatusOK, rev)
}

func (api *reviewApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting reviews")
	}
	return ctx.NoContent(http.StatusNoContent)
}
