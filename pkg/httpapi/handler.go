// 文件: pkg/httpapi/handler.go
// HTTP 报价接口 (gin)

package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"max.com/bsquote/pkg/options"
	"max.com/bsquote/pkg/quote"
)

// Handler 报价 HTTP 处理器
type Handler struct {
	service *quote.Service
}

func NewHandler(service *quote.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter 创建带 Recovery / Logger 的路由
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/v1")
	{
		api.POST("/price", h.Price)
		api.POST("/quotes", h.CreateQuote)
		api.GET("/quotes/:id", h.GetQuote)
		api.GET("/users/:uid/quotes", h.ListQuotes)
		api.GET("/presets", h.ListPresets)
		api.GET("/presets/:name", h.GetPreset)
	}
}

// PriceResponse 无状态定价结果
type PriceResponse struct {
	options.Result
	Summary   string `json:"summary"`
	Favorable bool   `json:"favorable"`
}

// Price 只计算不落库
func (h *Handler) Price(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	req, err := in.Form().Request()
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := options.Evaluate(req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PriceResponse{
		Result:    res,
		Summary:   options.Describe(req.Kind, res.Assessment),
		Favorable: options.Favorable(req.Kind, res.Moneyness),
	})
}

// CreateQuote 计算并保存报价
func (h *Handler) CreateQuote(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	rec, err := h.service.QuoteForm(c.Request.Context(), in.UserID, in.Form())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetQuote 按 ID 查询
func (h *Handler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, quote.ErrorBody{Code: quote.CodeInvalidParameter, Message: "invalid quote id"})
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListQuotes 用户最近报价
func (h *Handler) ListQuotes(c *gin.Context) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, quote.ErrorBody{Code: quote.CodeInvalidParameter, Message: "invalid user id"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	recs, err := h.service.History(c.Request.Context(), uid, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": recs})
}

func (h *Handler) ListPresets(c *gin.Context) {
	out := make(map[string]options.Form)
	for _, name := range options.PresetNames() {
		out[name], _ = options.Preset(name)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetPreset(c *gin.Context) {
	f, ok := options.Preset(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, quote.ErrorBody{Code: quote.CodeNotFound, Message: "unknown preset"})
		return
	}
	c.JSON(http.StatusOK, f)
}

// =============================================================================
// 辅助
// =============================================================================

func bindInput(c *gin.Context) (quote.Input, bool) {
	var in quote.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, quote.ErrorBody{Code: quote.CodeInvalidParameter, Message: "malformed request: " + err.Error()})
		return in, false
	}
	return in, true
}

// writeError 参数错误 400，不存在 404，其余 500
func writeError(c *gin.Context, err error) {
	body := quote.DescribeError(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, options.ErrInvalidParameter), errors.Is(err, options.ErrInvalidOptionType):
		status = http.StatusBadRequest
	case errors.Is(err, quote.ErrNotFound):
		status = http.StatusNotFound
	default:
		// 内部错误不暴露细节
		body.Message = "internal error"
		c.Error(err)
	}
	c.JSON(status, body)
}
