package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/middleware"
	"github.com/annel0/voxel-sandbox/internal/session"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// RestServer — отладочный HTTP API поверх сессии
type RestServer struct {
	router  *gin.Engine
	session *session.Session
	addr    string
	server  *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Addr    string // адрес для запуска сервера, host:port
	Service string // имя сервиса для трассировки
}

// GenericResponse — общий формат ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает REST API сервер
func NewRestServer(sess *session.Session, config Config) *RestServer {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:8088"
	}
	if config.Service == "" {
		config.Service = "voxel-sandbox"
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.Service))

	loggerMw := middleware.NewRequestLogger(logging.GetAPILogger())
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("rest_api", sess.Metrics().Registry)
	router.Use(promMw.Handler())

	rs := &RestServer{
		router:  router,
		session: sess,
		addr:    config.Addr,
	}
	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)
	rs.router.GET("/metrics", gin.WrapH(rs.session.Metrics().Handler()))

	api := rs.router.Group("/api")
	{
		api.GET("/player", rs.handlePlayer)
		api.GET("/environment", rs.handleEnvironment)
		api.GET("/chunks/:cx/:cz", rs.handleChunk)
		api.POST("/console", rs.handleConsole)
		api.POST("/edit", rs.handleEdit)
	}
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start начинает слушать адрес и обслуживает запросы в фоне
func (rs *RestServer) Start() error {
	ln, err := net.Listen("tcp", rs.addr)
	if err != nil {
		return err
	}

	rs.server = &http.Server{
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := rs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ REST API остановлен с ошибкой: %v", err)
		}
	}()

	logging.Info("🌐 REST API: http://%s", ln.Addr())
	return nil
}

// Stop плавно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.server == nil {
		return nil
	}
	return rs.server.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (rs *RestServer) handlePlayer(c *gin.Context) {
	c.JSON(http.StatusOK, rs.session.PlayerSnapshot())
}

// handleEnvironment возвращает небо для времени t или для текущего игрового времени
func (rs *RestServer) handleEnvironment(c *gin.Context) {
	raw, ok := c.GetQuery("t")
	if !ok {
		c.JSON(http.StatusOK, rs.session.Environment())
		return
	}

	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Параметр t должен быть числом",
		})
		return
	}
	c.JSON(http.StatusOK, world.EnvironmentState(t))
}

// ChunkView — чанк в ответе API, блоки в формате файла сохранения
type ChunkView struct {
	X      int                   `json:"x"`
	Z      int                   `json:"z"`
	Biome  string                `json:"biome"`
	Count  int                   `json:"count"`
	Blocks map[string]block.Type `json:"blocks"`
}

// handleChunk отдаёт сгенерированный чанк; ?generate=true генерирует недостающий
func (rs *RestServer) handleChunk(c *gin.Context) {
	cx, errX := strconv.Atoi(c.Param("cx"))
	cz, errZ := strconv.Atoi(c.Param("cz"))
	if errX != nil || errZ != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Координаты чанка должны быть целыми",
		})
		return
	}

	coords := vec.Vec2{X: cx, Z: cz}
	manager := rs.session.Manager()

	chunk, ok := manager.ChunkAt(coords)
	if !ok && c.Query("generate") == "true" {
		chunk, ok = manager.RequestChunk(c.Request.Context(), coords), true
	}
	if !ok {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Чанк ещё не сгенерирован",
		})
		return
	}

	blocks := chunk.BlocksCopy()
	view := ChunkView{
		X:      cx,
		Z:      cz,
		Biome:  string(chunk.Biome),
		Count:  len(blocks),
		Blocks: make(map[string]block.Type, len(blocks)),
	}
	for pos, bt := range blocks {
		view.Blocks[pos.String()] = bt
	}
	c.JSON(http.StatusOK, view)
}

// ConsoleRequest — команда консоли
type ConsoleRequest struct {
	Command string `json:"command" binding:"required"`
}

func (rs *RestServer) handleConsole(c *gin.Context) {
	var req ConsoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	out, err := rs.session.RunCommand(c.Request.Context(), req.Command)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrUnknownCommand) {
			status = http.StatusNotFound
		}
		c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: out})
}

// EditRequest — действие луча: break или place
type EditRequest struct {
	Action string `json:"action" binding:"required"`
}

func (rs *RestServer) handleEdit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	var action interaction.Action
	switch req.Action {
	case interaction.ActionBreak.String():
		action = interaction.ActionBreak
	case interaction.ActionPlace.String():
		action = interaction.ActionPlace
	default:
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Действие должно быть break или place",
		})
		return
	}

	result := rs.session.Edit(c.Request.Context(), action)
	if result == nil {
		c.JSON(http.StatusOK, GenericResponse{Success: false, Message: "Нет блока в пределах досягаемости"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: result.Name, Data: result})
}
