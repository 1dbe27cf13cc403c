package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
)

type tutorApi struct {
	svc     tutor.Service
	userSvc user.Service
}

func registerTutorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc tutor.Service, userSvc user.Service) {
	api := tutorApi{svc: svc, userSvc: userSvc}

	// un-authed endpoints: the tutor directory is public
	tg := g.Group("/tutors")
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)

	// authed endpoints
	atg := tg.Group("", jwt)
	atg.POST("", api.create)
	atg.PUT("/:id", api.update)
	atg.PATCH("/:id/verify", api.verify, adminMiddleware())

	pg := g.Group("/profiles", jwt)
	pg.POST("", api.createProfile)
	pg.GET("/:id", api.retrieveProfile)
	pg.PUT("/:id", api.updateProfile)
}

// Handlers

func (api *tutorApi) query(ctx echo.Context) error {
	filter := new(tutor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []tutor.TutorProfile{})
	}
	var ord Ordering
	ord.Bind(ctx)
	filter.Orderings = ord.Orderings

	tutors, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	if tutors == nil {
		tutors = []tutor.TutorProfile{}
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *tutorApi) retrieve(ctx echo.Context) error {
	tp, err := api.svc.GetTutorProfile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == tutor.ErrTutorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting tutor profile")
	}
	return ctx.JSON(http.StatusOK, tp)
}

func (api *tutorApi) create(ctx echo.Context) error {
	var data tutor.NewTutorProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTutorProfile")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsTutor() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}
	// tutors can only set up their own shop
	if !ctxUsr.IsAdmin() {
		data.ID = ctxUsr.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	tp, err := api.svc.CreateTutorProfile(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == tutor.ErrProfileNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating tutor profile")
	}
	return ctx.JSON(http.StatusCreated, tp)
}

func (api *tutorApi) update(ctx echo.Context) error {
	if err := api.checkSelfOrAdmin(ctx); err != nil {
		return err
	}

	var data tutor.UpdateTutorProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTutorProfile")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	tp, err := api.svc.UpdateTutorProfile(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == tutor.ErrTutorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating tutor profile")
	}
	return ctx.JSON(http.StatusOK, tp)
}

func (api *tutorApi) verify(ctx echo.Context) error {
	var data VerifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyRequest")
	}

	tp, err := api.svc.SetVerified(ctx.Request().Context(), ctx.Param("id"), data.Verified)
	if err != nil {
		if errors.Cause(err) == tutor.ErrTutorNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "verifying tutor")
	}
	return ctx.JSON(http.StatusOK, tp)
}

func (api *tutorApi) createProfile(ctx echo.Context) error {
	var data tutor.NewProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfile")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// a profile always belongs to its user
	if !ctxUsr.IsAdmin() {
		data.ID = ctxUsr.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	prof, err := api.svc.CreateProfile(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating profile")
	}
	return ctx.JSON(http.StatusCreated, prof)
}

func (api *tutorApi) retrieveProfile(ctx echo.Context) error {
	prof, err := api.svc.GetProfile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == tutor.ErrProfileNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *tutorApi) updateProfile(ctx echo.Context) error {
	if err := api.checkSelfOrAdmin(ctx); err != nil {
		return err
	}

	orig, err := api.svc.GetProfile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == tutor.ErrProfileNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting profile")
	}

	var data tutor.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	prof, err := api.svc.UpdateProfile(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *tutorApi) checkSelfOrAdmin(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && ctx.Param("id") != ctxUsr.ID {
		return errHttpForbidden
	}
	return nil
}

type VerifyRequest struct {
	Verified bool `json:"verified"`
}
