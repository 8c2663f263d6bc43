package main

import (
	"github.com/gin-gonic/gin"
	"github.com/hhhapz/swiftbook/topic"
)

var (
	urlRequired    = "URL parameter is required"
	scrapeFailed   = "Failed to scrape content"
	internalError  = "Internal server error"
	tooManyScrapes = "Too many scrape requests"
	notScraped     = "No scraped content for topic"
	queryLength    = "Query must be between 3 and 40 characters"
)

func failResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

type topicSummary struct {
	topic.Topic
	Cached bool `json:"cached"`
}

func (a *appState) topicSummaries() []topicSummary {
	topics := a.topics.Topics()
	summaries := make([]topicSummary, len(topics))
	for i, tp := range topics {
		summaries[i] = topicSummary{Topic: tp, Cached: a.store.Has(tp.Key)}
	}
	return summaries
}
