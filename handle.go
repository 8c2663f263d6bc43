package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *appState) routes() *gin.Engine {
	r := gin.New()
	r.Use(a.instrument(), gin.CustomRecovery(a.recoverPanic))

	api := r.Group("/api")
	api.GET("/scrape-swift-docs", a.handleScrape)
	api.GET("/topics", a.handleTopics)
	api.GET("/topics/:key", a.handleTopic)
	api.GET("/topics/:key/sections", a.handleSections)
	api.GET("/search", a.handleSearch)
	api.POST("/docc", a.handleDocC)
	api.GET("/info", a.handleInfo)

	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	return r
}

// instrument records every request. Unmatched routes share one label so
// arbitrary paths cannot grow the metric.
func (a *appState) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start)

		a.metrics.ObserveRequest(c.Request.Method, path, status, elapsed)
		a.log.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "duration", elapsed)
	}
}

func (a *appState) recoverPanic(c *gin.Context, err any) {
	a.log.Error("API error", "path", c.Request.URL.Path, "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   internalError,
		"details": fmt.Sprint(err),
	})
}
