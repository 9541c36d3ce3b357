// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"ecowas_fisheries_backend/internal/app"
	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/auth"
	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/filestorage"
	"ecowas_fisheries_backend/internal/firebase"
	"ecowas_fisheries_backend/internal/indicator"
	"ecowas_fisheries_backend/internal/jobs"
	"ecowas_fisheries_backend/internal/notification"
	"ecowas_fisheries_backend/internal/push"
	"ecowas_fisheries_backend/internal/shared"
	"ecowas_fisheries_backend/internal/upload"
	"ecowas_fisheries_backend/internal/user"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	provideLogger,
	provideDatabase,
	firebase.NewFirebaseService,
	filestorage.NewObjectStore,
	email.NewSender,
	push.NewSender,
	provideSearchClient,
)

var serviceSet = wire.NewSet(
	audit.NewGORMRepository,
	audit.NewService,

	user.NewGORMRepository,
	user.NewService,
	wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
	wire.Bind(new(shared.ProfileDirectory), new(*user.ServiceImplementation)),
	wire.Bind(new(auth.ProfileProvider), new(*user.ServiceImplementation)),
	wire.Bind(new(jobs.AdminDirectory), new(*user.ServiceImplementation)),

	wire.Bind(new(auth.IdentityProvider), new(*firebase.FirebaseService)),
	provideSessionStore,
	auth.NewService,
	wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
	wire.Bind(new(shared.SessionResolver), new(*auth.ServiceImplementation)),

	notification.NewGORMRepository,
	notification.NewService,
	provideBroadcaster,

	upload.NewGORMRepository,
	upload.NewIndexer,
	upload.NewOptions,
	upload.NewService,

	indicator.NewGORMRepository,
	indicator.NewService,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		serviceSet,

		// Handlers
		auth.NewHandler,
		user.NewHandler,
		upload.NewHandler,
		indicator.NewHandler,
		notification.NewHandler,
		audit.NewHandler,
		push.NewHandler,
		wire.Struct(new(app.Handlers), "*"),

		provideLimiter,
		providePendingSource,
		jobs.NewPendingReviewJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeCommands wires the services used by the CLI subcommands.
func initializeCommands(cfg *config.Config) (*commands, func(), error) {
	wire.Build(
		platformSet,
		serviceSet,
		wire.Struct(new(commands), "*"),
	)
	return nil, nil, nil
}
