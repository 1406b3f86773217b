// Package server wires the pipeline to a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"feedpulse/internal/aggregator"
	"feedpulse/internal/article"
	"feedpulse/internal/feed"
	"feedpulse/internal/insight"
	"feedpulse/internal/metrics"
	"feedpulse/internal/store"
)

type Server struct {
	store         store.Store
	parser        *feed.Parser
	agg           *aggregator.Aggregator
	engine        *insight.Engine
	trendMinCount int
}

func New(st store.Store, parser *feed.Parser, agg *aggregator.Aggregator, engine *insight.Engine, trendMinCount int) *Server {
	return &Server{
		store:         st,
		parser:        parser,
		agg:           agg,
		engine:        engine,
		trendMinCount: trendMinCount,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.GET("/fetch-rss", s.fetchFeed)
		api.GET("/validate-rss", s.validateFeed)
		api.GET("/articles", s.listArticles)
		api.GET("/trends", s.listTrends)
		api.GET("/similar", s.similarArticles)
		api.POST("/recommendations", s.recommend)
		api.POST("/analyze", s.analyze)
		api.GET("/feeds", s.listFeeds)
		api.POST("/feeds", s.createFeed)
	}
	r.GET("/health", s.health)
	r.GET("/metrics", s.metricsHandler)

	return r
}

// fetchFeed fetches and normalizes a single feed URL without touching
// the subscription store.
func (s *Server) fetchFeed(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	items, err := s.parser.Articles(c.Request.Context(), store.Feed{URL: url}, s.agg.Cutoff())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch feed"})
		return
	}
	c.JSON(http.StatusOK, article.SortByDate(article.Dedupe(items), true))
}

func (s *Server) validateFeed(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, feed.Info{Error: "url is required"})
		return
	}

	info := s.parser.Validate(c.Request.Context(), url)
	if !info.Valid {
		c.JSON(http.StatusBadRequest, info)
		return
	}
	c.JSON(http.StatusOK, info)
}

// listArticles runs a full aggregation cycle and applies the stateless
// query filters over the deduplicated stream.
func (s *Server) listArticles(c *gin.Context) {
	corpus, err := s.agg.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate feeds"})
		return
	}

	corpus = article.Search(corpus, c.Query("q"))
	corpus = article.ByCategory(corpus, c.Query("category"))

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}
	corpus = article.Between(corpus, from, to)

	newestFirst := c.DefaultQuery("sort", "newest") != "oldest"
	corpus = article.SortByDate(corpus, newestFirst)

	c.JSON(http.StatusOK, gin.H{"count": len(corpus), "articles": corpus})
}

func (s *Server) listTrends(c *gin.Context) {
	corpus, err := s.agg.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate feeds"})
		return
	}
	c.JSON(http.StatusOK, s.agg.Trends(corpus, s.trendMinCount))
}

func (s *Server) similarArticles(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	corpus, err := s.agg.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate feeds"})
		return
	}

	target, ok := findByIdentity(corpus, id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, s.engine.Similar(c.Request.Context(), target, corpus, 0))
}

type recommendRequest struct {
	Read []string `json:"read"`
}

// recommend resolves read identities against the current corpus and asks
// the ranker for the rest. Unknown identities are ignored.
func (s *Server) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	corpus, err := s.agg.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate feeds"})
		return
	}

	read := make(map[string]struct{}, len(req.Read))
	for _, id := range req.Read {
		read[id] = struct{}{}
	}

	var history, pool []article.Article
	for _, a := range corpus {
		if _, ok := read[a.Identity()]; ok {
			history = append(history, a)
		} else {
			pool = append(pool, a)
		}
	}
	c.JSON(http.StatusOK, s.engine.Recommend(c.Request.Context(), history, pool))
}

type analyzeRequest struct {
	ID string `json:"id"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	corpus, err := s.agg.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate feeds"})
		return
	}

	target, ok := findByIdentity(corpus, req.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, s.engine.Analyze(c.Request.Context(), target))
}

func (s *Server) listFeeds(c *gin.Context) {
	feeds, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feeds"})
		return
	}
	if feeds == nil {
		feeds = []store.Feed{}
	}
	c.JSON(http.StatusOK, feeds)
}

type createFeedRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// createFeed validates the URL by fetch+parse before storing it; the
// parsed document supplies title and description when the caller omits
// them.
func (s *Server) createFeed(c *gin.Context) {
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	info := s.parser.Validate(c.Request.Context(), req.URL)
	if !info.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a valid feed"})
		return
	}
	if req.Title == "" {
		req.Title = info.Title
	}
	if req.Description == "" {
		req.Description = info.Description
	}

	created, err := s.store.Create(c.Request.Context(), req.URL, req.Title, req.Description)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) health(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) metricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Global.GetStats())
}

func findByIdentity(corpus []article.Article, id string) (article.Article, bool) {
	for _, a := range corpus {
		if a.Identity() == id {
			return a, true
		}
	}
	return article.Article{}, false
}
