package handlers

import (
	"context"
	"net/http"

	"github.com/mkuznecov/blogplatform/internal/handlers/middleware"
	"github.com/mkuznecov/blogplatform/internal/logger"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// fullAuthService is everything the router needs from the auth service:
// the handler surface plus device management and both guards
type fullAuthService interface {
	AuthService
	DeviceService
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
	CheckRefresh(ctx context.Context, refresh string) (auth.RefreshClaims, error)
}

type RouterConfig struct {
	AdminLogin    string
	AdminPassword string

	// EnableTesting mounts the data-wipe endpoint. e2e environments only
	EnableTesting bool
}

func NewRouter(
	cfg RouterConfig,
	authService fullAuthService,
	blogService BlogService,
	postService PostService,
	commentService CommentService,
	userService UserService,
	storage DataWiper,
	log logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)
	withViewer := middleware.OptionalAuthMiddleware(authService)
	withRefresh := middleware.RefreshMiddleware(authService)
	withBasicAuth := middleware.BasicAuthMiddleware(cfg.AdminLogin, cfg.AdminPassword)

	authHandler := NewAuth(authService, auth.DeviceMetaFromRequest)
	devicesHandler := NewDevices(authService)
	blogHandler := NewBlog(blogService)
	postHandler := NewPost(postService)
	commentHandler := NewComment(commentService)
	usersHandler := NewUsers(userService)

	api := http.NewServeMux()

	api.Handle("/auth/", authHandler.Handler())
	api.Handle("POST /auth/refresh-token", withRefresh(http.HandlerFunc(authHandler.Refresh)))
	api.Handle("POST /auth/logout", withRefresh(http.HandlerFunc(authHandler.Logout)))
	api.Handle("GET /auth/me", withAuth(http.HandlerFunc(authHandler.Me)))

	api.Handle("/security/", withRefresh(devicesHandler.Handler()))

	// Public content reads admit anonymous callers; the optional guard
	// resolves the viewer so MyStatus in like info is personal
	publicBlogs := withViewer(blogHandler.PublicHandler())
	api.Handle("/blogs", publicBlogs)
	api.Handle("/blogs/", publicBlogs)

	posts := withViewer(postHandler.Handler(withAuth))
	api.Handle("/posts", posts)
	api.Handle("/posts/", posts)

	api.Handle("/comments/", withViewer(commentHandler.Handler(withAuth)))

	adminBlogs := withBasicAuth(blogHandler.AdminHandler())
	api.Handle("/sa/blogs", adminBlogs)
	api.Handle("/sa/blogs/", adminBlogs)

	adminUsers := withBasicAuth(usersHandler.Handler())
	api.Handle("/sa/users", adminUsers)
	api.Handle("/sa/users/", adminUsers)

	if cfg.EnableTesting {
		api.Handle("/testing/", NewTesting(storage).Handler())
	}

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root,
		middleware.LoggerMiddleware(log),
	)
}
