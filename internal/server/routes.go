package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yqhp/hookserver/common/response"
	"yqhp/hookserver/internal/hook"
)

// StatusView is the body of GET /status.
type StatusView struct {
	App     string         `json:"app"`
	Version string         `json:"version"`
	Env     string         `json:"env"`
	State   string         `json:"state"`
	Uptime  string         `json:"uptime"`
	Hooks   []string       `json:"hooks"`
	Info    map[string]any `json:"info"`
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)
	s.app.Get("/ready", s.ready)
	s.app.Get("/status", s.status)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})))

	if s.cfg.Server.EnableAdmin {
		admin := s.app.Group("/admin")
		admin.Post("/reload", s.reload)
	}
}

// health 存活检查，进程存在即返回成功
func (s *Server) health(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"status": "ok"})
}

// ready 就绪检查，钩子全部初始化后返回成功
func (s *Server) ready(c *fiber.Ctx) error {
	state := s.orch.State()
	if state != hook.StateReady {
		return response.Unavailable(c, "hooks not ready", fiber.Map{"state": state.String()})
	}
	return response.Success(c, fiber.Map{"state": state.String()})
}

func (s *Server) status(c *fiber.Ctx) error {
	view := StatusView{
		App:     s.cfg.App.Name,
		Version: s.cfg.App.Version,
		Env:     s.cfg.App.Env,
		State:   s.orch.State().String(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Hooks:   s.orch.Registry().Names(),
	}

	info, err := s.orch.PublicInfo(c.UserContext())
	if err != nil {
		if hook.IsStateError(err) {
			return response.Unavailable(c, "hooks not ready", view)
		}
		s.log.Error("collect hook info", zap.Error(err))
		return response.ServerError(c, err.Error())
	}
	view.Info = info
	return response.Success(c, view)
}

// reload 重新初始化所有钩子
func (s *Server) reload(c *fiber.Ctx) error {
	start := time.Now()
	if err := s.orch.ResetHooks(c.UserContext()); err != nil {
		if hook.IsStateError(err) {
			return response.Conflict(c, err.Error())
		}
		s.log.Error("reload hooks", zap.Error(err))
		return response.ServerError(c, err.Error())
	}
	return response.SuccessWithMessage(c, "hooks reloaded", fiber.Map{
		"state": s.orch.State().String(),
		"took":  time.Since(start).String(),
	})
}
