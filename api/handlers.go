package api

import (
	"github.com/m-im-ha/turbo-blog-practice/auth"
	"github.com/m-im-ha/turbo-blog-practice/models"
	"github.com/m-im-ha/turbo-blog-practice/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Store  models.Store
	Tokens interface {
		auth.Verifier
		services.TokenIssuer
	}
	Tags services.TagScheduler
}

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogHandler         blogHandler
	engagementHandler   engagementHandler
	notificationHandler notificationHandler
	userHandler         userHandler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies) *routeHandlers {
	return &routeHandlers{
		blogHandler:         newBlogHandler(services.NewBlogs(deps.Store, deps.Tags)),
		engagementHandler:   newEngagementHandler(services.NewEngagement(deps.Store)),
		notificationHandler: newNotificationHandler(services.NewNotifications(deps.Store)),
		userHandler:         newUserHandler(services.NewUsers(deps.Store, deps.Tokens)),
	}
}
