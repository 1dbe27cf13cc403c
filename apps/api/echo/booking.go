package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/user"
)

type bookingApi struct {
	svc     booking.Service
	userSvc user.Service
}

func registerBookingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc booking.Service, userSvc user.Service) {
	api := bookingApi{svc: svc, userSvc: userSvc}

	bg := g.Group("/bookings", jwt)
	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.PATCH("/:id/confirm", api.confirm)
	bg.PATCH("/:id/complete", api.complete)
	bg.PATCH("/:id/cancel", api.cancel)
}

// Handlers

func (api *bookingApi) create(ctx echo.Context) error {
	var data booking.NewBooking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}

	// a booking is always made by its caller
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() {
		data.StudentID = ctxUsr.ID
	}

	if err := data.Validate(); err != nil {
		return err
	}

	bk, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == booking.ErrSlotTaken {
			return core.NewValidationError(err, core.FieldError{Field: "starts_at", Error: booking.ErrSlotTaken.Error()})
		}
		return errors.Wrap(err, "creating booking")
	}
	return ctx.JSON(http.StatusCreated, bk)
}

func (api *bookingApi) query(ctx echo.Context) error {
	filter := new(booking.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []booking.Booking{})
	}
	if filter.Status != "" && !booking.IsValidStatus(filter.Status) {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}

	// non-admins only see their own bookings
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() {
		if ctxUsr.IsTutor() {
			filter.TutorID = ctxUsr.ID
		} else {
			filter.StudentID = ctxUsr.ID
		}
	}

	bookings, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying bookings")
	}
	if bookings == nil {
		bookings = []booking.Booking{}
	}
	return ctx.JSON(http.StatusOK, bookings)
}

func (api *bookingApi) retrieve(ctx echo.Context) error {
	bk, _, err := api.getBookingForUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, bk)
}

func (api *bookingApi) confirm(ctx echo.Context) error {
	bk, ctxUsr, err := api.getBookingForUser(ctx)
	if err != nil {
		return err
	}
	// only the tutor (or an admin) confirms a session
	if !ctxUsr.IsAdmin() && bk.TutorID != ctxUsr.ID {
		return errHttpForbidden
	}

	bk, err = api.svc.Confirm(ctx.Request().Context(), bk.ID)
	if err != nil {
		return errors.Wrap(err, "confirming booking")
	}
	return ctx.JSON(http.StatusOK, bk)
}

func (api *bookingApi) complete(ctx echo.Context) error {
	bk, ctxUsr, err := api.getBookingForUser(ctx)
	if err != nil {
		return err
	}
	// only the tutor (or an admin) marks a session done
	if !ctxUsr.IsAdmin() && bk.TutorID != ctxUsr.ID {
		return errHttpForbidden
	}

	var data booking.CompleteBooking
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteBooking")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	bk, err = api.svc.Complete(ctx.Request().Context(), bk.ID, data.Rating)
	if err != nil {
		return errors.Wrap(err, "completing booking")
	}
	return ctx.JSON(http.StatusOK, bk)
}

func (api *bookingApi) cancel(ctx echo.Context) error {
	bk, _, err := api.getBookingForUser(ctx)
	if err != nil {
		return err
	}

	bk, err = api.svc.Cancel(ctx.Request().Context(), bk.ID)
	if err != nil {
		return errors.Wrap(err, "cancelling booking")
	}
	return ctx.JSON(http.StatusOK, bk)
}

// getBookingForUser fetches the booking and checks the caller takes part in it (or is admin).
func (api *bookingApi) getBookingForUser(ctx echo.Context) (booking.Booking, user.User, error) {
	bk, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == booking.ErrNotFound {
			return booking.Booking{}, user.User{}, errHttpNotFound
		}
		return booking.Booking{}, user.User{}, errors.Wrap(err, "getting booking")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return booking.Booking{}, user.User{}, errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && bk.StudentID != ctxUsr.ID && bk.TutorID != ctxUsr.ID {
		return booking.Booking{}, user.User{}, errHttpNotFound
	}
	return bk, ctxUsr, nil
}
