// http собирает REST-роутер платформы: chi + мидлвары + регистрация маршрутов.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sneddy/dsmlkz-platform/internal/http/handlers"
	"github.com/sneddy/dsmlkz-platform/internal/http/middleware"
	"github.com/sneddy/dsmlkz-platform/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger      *slog.Logger
	Timeout     time.Duration
	CORSOrigins []string
	BasePath    string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),              // безопасно ловим паники
		middleware.RequestID(),            // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),   // кладём request-scoped логгер в контекст и логируем
		middleware.CORS(opts.CORSOrigins), // браузерный allow-list
		middleware.AuthBearer(),           // вынимаем Bearer токен в контекст для хендлеров
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/register", h.RegisterUser)
	r.Post("/auth/login", h.LoginUser)
	r.Post("/auth/refresh", h.RefreshToken)
	r.Post("/auth/revoke", h.RevokeToken)
	r.Post("/auth/validate", h.ValidateToken)

	// profiles
	r.Get("/profiles/{id}", h.GetProfile)
	r.Patch("/profiles/{id}", h.UpdateProfile)
	r.Post("/profiles/{id}/avatar/presign", h.AvatarPresign)
	r.Post("/profiles/{id}/avatar/confirm", h.AvatarConfirm)
	r.Get("/profiles", h.ListPublicProfiles)
	r.Get("/community/faces", h.CommunityFaces)

	// плоский апдейт анкеты, который использует веб-клиент.
	r.Post("/profile/update", h.UpdateProfileSelf)

	// feeds
	r.Post("/feeds/ingest", h.IngestContent)
	r.Get("/feeds/news", h.ListNews)
	r.Get("/feeds/news/{id}", h.GetNewsByID)
	r.Get("/feeds/jobs", h.ListJobs)
	r.Get("/feeds/jobs/{id}", h.GetJobByID)
}
