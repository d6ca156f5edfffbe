package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/catalog"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/pricing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/tables"
)

type tableView struct {
	Table      models.TableSession `json:"table"`
	Projection billing.Projection  `json:"projection"`
}

type startRequest struct {
	PSModel         models.PSModel         `json:"psModel" binding:"required"`
	ControllerCount models.ControllerCount `json:"controllerCount" binding:"required"`
}

type orderRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type transferRequest struct {
	To string `json:"to" binding:"required"`
}

// NewRouter exposes the desk over a small JSON API.
func NewRouter(d *desk, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	api := r.Group("/api")

	api.GET("/tables", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tables": d.tables.Tables()})
	})
	api.POST("/tables", func(c *gin.Context) {
		t, err := d.tables.AddTable(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	})
	api.GET("/tables/:id", func(c *gin.Context) {
		t, err := d.tables.Table(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tableView{Table: t, Projection: billing.Project(t, d.tables.Now())})
	})
	api.DELETE("/tables/:id", func(c *gin.Context) {
		if err := d.deleteIdleTable(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	api.POST("/tables/:id/start", func(c *gin.Context) {
		var req startRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondTable(c, d, d.startSession(c.Request.Context(), c.Param("id"), req.PSModel, req.ControllerCount))
	})
	api.POST("/tables/:id/pause", func(c *gin.Context) {
		respondTable(c, d, d.tables.Pause(c.Request.Context(), c.Param("id")))
	})
	api.POST("/tables/:id/resume", func(c *gin.Context) {
		respondTable(c, d, d.tables.Resume(c.Request.Context(), c.Param("id")))
	})
	api.POST("/tables/:id/stop", func(c *gin.Context) {
		respondTable(c, d, d.tables.Stop(c.Request.Context(), c.Param("id")))
	})
	api.POST("/tables/:id/reset", func(c *gin.Context) {
		respondTable(c, d, d.tables.Reset(c.Request.Context(), c.Param("id")))
	})
	api.POST("/tables/:id/orders", func(c *gin.Context) {
		var req orderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondTable(c, d, d.orderProduct(c.Request.Context(), c.Param("id"), req.ProductID))
	})
	api.DELETE("/tables/:id/orders/:productId", func(c *gin.Context) {
		respondTable(c, d, d.tables.RemoveProduct(c.Request.Context(), c.Param("id"), c.Param("productId")))
	})
	api.PUT("/tables/:id/name", func(c *gin.Context) {
		var req renameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondTable(c, d, d.tables.Rename(c.Request.Context(), c.Param("id"), req.Name))
	})
	api.POST("/tables/:id/transfer", func(c *gin.Context) {
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondTable(c, d, d.tables.Transfer(c.Request.Context(), c.Param("id"), req.To))
	})
	api.POST("/commands", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cmd, err := tables.DecodeCommand(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		list, err := d.dispatch(c.Request.Context(), cmd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tables": list})
	})

	api.GET("/products", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"products": d.catalog.List()})
	})
	api.POST("/products", func(c *gin.Context) {
		var p models.Product
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := d.catalog.Add(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})
	api.PUT("/products/:id", func(c *gin.Context) {
		var p models.Product
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.ID = c.Param("id")
		if err := d.catalog.Update(c.Request.Context(), p); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})
	api.DELETE("/products/:id", func(c *gin.Context) {
		if err := d.catalog.Remove(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.GET("/pricing", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rules": d.pricing.List()})
	})
	api.GET("/pricing/rate", func(c *gin.Context) {
		model := models.PSModel(c.Query("model"))
		count, err := strconv.Atoi(c.Query("controllers"))
		if err != nil || !model.Valid() || !models.ControllerCount(count).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "model must be ps3, ps4 or ps5 and controllers 2 or 4"})
			return
		}
		c.JSON(http.StatusOK, d.pricing.Config(model, models.ControllerCount(count)))
	})
	api.PUT("/pricing/:id", func(c *gin.Context) {
		var rule models.PricingRule
		if err := c.ShouldBindJSON(&rule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rule.ID = c.Param("id")
		if err := d.pricing.Update(c.Request.Context(), rule); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rule)
	})

	return r
}

func respondTable(c *gin.Context, d *desk, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	t, err := d.tables.Table(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tableView{Table: t, Projection: billing.Project(t, d.tables.Now())})
}

func respondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, tables.ErrTableNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, pricing.ErrRuleNotFound):
		code = http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, ErrInvalidTier):
		code = http.StatusBadRequest
	case errors.Is(err, ErrTableBusy):
		code = http.StatusConflict
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
