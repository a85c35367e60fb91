package server

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gatherly/gatherly/internal/config"
	activitycommands "github.com/gatherly/gatherly/internal/modules/activity/commands"
	activityqueries "github.com/gatherly/gatherly/internal/modules/activity/queries"
	"github.com/gatherly/gatherly/internal/modules/auth"
	authcommands "github.com/gatherly/gatherly/internal/modules/auth/commands"
	authqueries "github.com/gatherly/gatherly/internal/modules/auth/queries"
	availabilitycommands "github.com/gatherly/gatherly/internal/modules/availability/commands"
	availabilitydomain "github.com/gatherly/gatherly/internal/modules/availability/domain"
	availabilityqueries "github.com/gatherly/gatherly/internal/modules/availability/queries"
	"github.com/gatherly/gatherly/internal/modules/core"
	groupcommands "github.com/gatherly/gatherly/internal/modules/group/commands"
	groupqueries "github.com/gatherly/gatherly/internal/modules/group/queries"
	"github.com/gatherly/gatherly/internal/store"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// HTTPServer acts as the composition root for the application.
type HTTPServer struct {
	server *http.Server
	store  *store.Store
	logger *zap.Logger
}

func NewHTTPServer(config config.Config) (*HTTPServer, error) {
	zap.ReplaceGlobals(config.Logger)

	s, err := store.Open(config.DatabasePath, config.Logger)
	if err != nil {
		return nil, err
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	// auth

	err = mediator.RegisterRequestHandler[authcommands.RegisterCommand, authcommands.RegisterResponse](
		authcommands.NewRegisterCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[authcommands.LoginCommand, authcommands.LoginResponse](
		authcommands.NewLoginCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[authcommands.LogoutCommand, core.Unit](
		authcommands.NewLogoutCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[authqueries.GetProfileQuery, authqueries.ProfileView](
		authqueries.NewGetProfileQueryHandler(s),
	)
	if err != nil {
		return nil, err
	}

	// availability

	err = mediator.RegisterRequestHandler[availabilitycommands.AddBlockCommand, core.Unit](
		availabilitycommands.NewAddBlockCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[availabilitycommands.RemoveBlockCommand, core.Unit](
		availabilitycommands.NewRemoveBlockCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[availabilityqueries.ListBlocksQuery, []availabilitydomain.Block](
		availabilityqueries.NewListBlocksQueryHandler(s),
	)
	if err != nil {
		return nil, err
	}

	// group

	err = mediator.RegisterRequestHandler[groupcommands.CreateGroupCommand, groupcommands.CreateGroupResponse](
		groupcommands.NewCreateGroupCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[groupcommands.AddMemberCommand, core.Unit](
		groupcommands.NewAddMemberCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[groupcommands.RemoveMemberCommand, core.Unit](
		groupcommands.NewRemoveMemberCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[groupcommands.PromoteAdminCommand, core.Unit](
		groupcommands.NewPromoteAdminCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[groupqueries.ListGroupsQuery, []groupqueries.GroupView](
		groupqueries.NewListGroupsQueryHandler(s),
	)
	if err != nil {
		return nil, err
	}

	// activity

	err = mediator.RegisterRequestHandler[activitycommands.CreateActivityCommand, activitycommands.CreateActivityResponse](
		activitycommands.NewCreateActivityCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[activitycommands.ChangeStatusCommand, core.Unit](
		activitycommands.NewChangeStatusCommandHandler(s),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[activityqueries.ListActivitiesQuery, []activityqueries.ActivityView](
		activityqueries.NewListActivitiesQueryHandler(s),
	)
	if err != nil {
		return nil, err
	}

	// http

	r := chi.NewRouter()
	r.Use(core.CorrelationIDHTTPMiddleware)

	r.Post("/auth/register", authcommands.HandleRegister)
	r.Post("/auth/login", authcommands.HandleLogin)
	r.Post("/auth/logout", authcommands.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticationMiddleware(s))

		r.Get("/me", authqueries.HandleGetProfile)

		r.Post("/blocks", availabilitycommands.HandleAddBlock)
		r.Delete("/blocks/{start}", availabilitycommands.HandleRemoveBlock)
		r.Get("/blocks", availabilityqueries.HandleListBlocks)

		r.Post("/groups", groupcommands.HandleCreateGroup)
		r.Get("/groups", groupqueries.HandleListGroups)
		r.Post("/groups/{groupID}/members", groupcommands.HandleAddMember)
		r.Delete("/groups/{groupID}/members/{userID}", groupcommands.HandleRemoveMember)
		r.Post("/groups/{groupID}/admins", groupcommands.HandlePromoteAdmin)

		r.Post("/activities", activitycommands.HandleCreateActivity)
		r.Get("/activities", activityqueries.HandleListActivities)
		r.Put("/activities/{activityID}/status", activitycommands.HandleChangeStatus)
	})

	server := &http.Server{
		Addr:    net.JoinHostPort("", fmt.Sprintf("%d", config.Port)),
		Handler: r,
	}

	return &HTTPServer{server: server, store: s, logger: config.Logger}, nil
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop() error {
	if err := s.server.Close(); err != nil {
		return err
	}

	return s.store.Close()
}
