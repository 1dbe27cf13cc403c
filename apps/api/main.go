package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/katleho/brainhub/apps/api/echo"
	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
	emailsvc "github.com/katleho/brainhub/services/email"
	logsvc "github.com/katleho/brainhub/services/logger"
	"github.com/katleho/brainhub/storage/database"
	sqlxrepos "github.com/katleho/brainhub/storage/database/sqlx"
)

func main() {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	userRepo := sqlxrepos.NewUserRepository(db)
	tutorRepo := sqlxrepos.NewTutorRepository(db)
	courseRepo := sqlxrepos.NewCourseRepository(db)
	reviewRepo := sqlxrepos.NewReviewRepository(db)
	bookingRepo := sqlxrepos.NewBookingRepository(db)

	usrSvc := user.NewService(userRepo, mailSvc)
	tutSvc := tutor.NewService(tutorRepo)
	crsSvc := course.NewService(courseRepo, tutorRepo, reviewRepo)
	revSvc := review.NewService(reviewRepo)
	bkSvc := booking.NewService(bookingRepo, tutSvc, userRepo, mailSvc)

	// shutdown channel doubles as the error handler's escape hatch
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:        core.Conf.Server.Address(),
			Logger:         logger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
			UserSvc:        usrSvc,
			TutorSvc:       tutSvc,
			CourseSvc:      crsSvc,
			ReviewSvc:      revSvc,
			BookingSvc:     bkSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + core.Conf.Server.Address())
		serverErrors <- server.Start()
	}()

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
