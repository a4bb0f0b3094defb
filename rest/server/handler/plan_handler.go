package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/mensylisir/opsagent/pkg/logger"
	"github.com/mensylisir/opsagent/pkg/plan"
	"github.com/mensylisir/opsagent/rest/app"
)

// maxPlanBytes caps the size of a plan document accepted over HTTP.
const maxPlanBytes = 1 << 20

// PlanHandler handles HTTP requests related to plans.
type PlanHandler struct {
	service *app.PlanService
	log     *logger.Logger
}

func NewPlanHandler(service *app.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{
		service: service,
		log:     log.With("component", "plan-handler"),
	}
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Text string `json:"text" binding:"required"`
}

// ErrorResponse is a generic error JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ExecutePlan godoc
// @Summary Execute a plan document
// @Accept json
// @Produce json
// @Success 200 {object} plan.Report
// @Router /api/v1/plans/execute [post]
func (h *PlanHandler) ExecutePlan(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPlanBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body: " + err.Error()})
		return
	}
	if len(raw) > maxPlanBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "plan document is too large"})
		return
	}
	report := h.service.ExecutePlan(c.Request.Context(), raw)
	h.log.Infof("Run %s finished with status %s", report.RunID, report.Status)
	c.JSON(http.StatusOK, report)
}

// Ask godoc
// @Summary Plan and execute a free-text request
// @Accept json
// @Produce json
// @Param askRequest body AskRequest true "Request text"
// @Success 200 {object} app.AskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Planner failure"
// @Failure 503 {object} ErrorResponse "Planner not configured"
// @Router /api/v1/ask [post]
func (h *PlanHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text cannot be empty"})
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), req.Text)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, app.ErrPlannerUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.log.Warnf("Ask failed: %v", err)
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun godoc
// @Summary Get a recent run report
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} plan.Report
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/runs/{runId} [get]
func (h *PlanHandler) GetRun(c *gin.Context) {
	report, err := h.service.GetRun(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *PlanHandler) ListCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"capabilities": h.service.Capabilities()})
}

func (h *PlanHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const indexHTML = `<!doctype html>
<html><head><title>opsagent</title></head>
<body>
<form method="post" action="/">
<textarea name="user_input" rows="4" cols="80" placeholder="Create a kubeconfig secret from /tmp/kubeconfig and a cluster that uses it"></textarea>
<button type="submit">Run</button>
</form>
</body></html>
`

func (h *PlanHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

// Submit serves the form front end: the user_input field goes through the
// planner and the engine, and the step results come back as a JSON array.
// A planning failure is reported as a single failed entry.
func (h *PlanHandler) Submit(c *gin.Context) {
	text := c.PostForm("user_input")
	resp, err := h.service.Ask(c.Request.Context(), text)
	if err != nil {
		now := time.Now()
		c.JSON(http.StatusOK, []plan.StepResult{{
			Step:      0,
			Action:    "plan",
			Args:      plan.Arguments{},
			Result:    plan.Failedf("%v", err),
			StartTime: now,
			EndTime:   now,
		}})
		return
	}
	c.JSON(http.StatusOK, resp.Report.Steps)
}
