package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/user"
)

type courseApi struct {
	svc     course.Service
	userSvc user.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, userSvc user.Service) {
	api := courseApi{svc: svc, userSvc: userSvc}

	cg := g.Group("/courses")

	// un-authed endpoints: students browse and match without an account
	cg.GET("", api.query)
	cg.GET("/subjects", api.querySubjects)
	cg.GET("/match", api.match)
	cg.POST("/match", api.match)
	cg.GET("/:id", api.retrieve)

	// authed endpoints
	ag := cg.Group("", jwt)
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()

	courses, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.Subjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []course.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

// match scores all active courses against the student's preferences and returns
// the top results, best first.
func (api *courseApi) match(ctx echo.Context) error {
	var prefs course.SearchPreferences
	if err := ctx.Bind(&prefs); err != nil {
		return errors.Wrap(err, "binding to SearchPreferences")
	}

	matches, err := api.svc.Match(ctx.Request().Context(), prefs)
	if err != nil {
		return errors.Wrap(err, "matching courses")
	}
	if matches == nil {
		matches = []course.ScoredCourse{}
	}
	return ctx.JSON(http.StatusOK, matches)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(ctxUsr.IsTutor() || ctxUsr.IsAdmin()) {
		return errHttpForbidden
	}
	// tutors can only create their own courses
	if !ctxUsr.IsAdmin() {
		data.TutorID = ctxUsr.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := api.getOwnedCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(crs); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, err := api.getOwnedCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getOwnedCourse fetches the course and checks the caller owns it (or is admin).
func (api *courseApi) getOwnedCourse(ctx echo.Context) (course.Course, error) {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && crs.TutorID != ctxUsr.ID {
		return course.Course{}, errHttpForbidden
	}
	return crs, nil
}
