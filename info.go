package main

import (
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

var started = time.Now()

type info struct {
	Go         string `json:"go"`
	Uptime     string `json:"uptime"`
	Started    string `json:"started"`
	Memory     string `json:"memory"`
	Goroutines string `json:"goroutines"`
	Topics     int    `json:"topics"`
	Cached     int    `json:"cached"`
	Fetcher    string `json:"fetcher"`
}

func (a *appState) info() info {
	stats := runtime.MemStats{}
	runtime.ReadMemStats(&stats)

	keys, err := a.store.Keys()
	if err != nil {
		a.log.Warn("could not list cache", "dir", a.store.Dir(), "err", err)
	}

	return info{
		Go:         runtime.Version(),
		Uptime:     time.Since(started).Round(time.Second).String(),
		Started:    humanize.Time(started),
		Memory:     humanize.Bytes(stats.Alloc) + " / " + humanize.Bytes(stats.Sys) + " (alloc / sys)",
		Goroutines: humanize.Comma(int64(runtime.NumGoroutine())),
		Topics:     len(a.topics.Keys()),
		Cached:     len(keys),
		Fetcher:    a.cfg.Scraper.Fetcher,
	}
}

func (a *appState) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, a.info())
}
