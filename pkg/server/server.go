// Package server exposes the ScrapBee workflow over HTTP: search for
// seeds, crawl for files, and download selections as a ZIP. The default
// bind is 0.0.0.0:8501.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/scrapbee/scrapbee/pkg/browser"
	"github.com/scrapbee/scrapbee/pkg/config"
	"github.com/scrapbee/scrapbee/pkg/crawl"
	"github.com/scrapbee/scrapbee/pkg/download"
	"github.com/scrapbee/scrapbee/pkg/search"
)

var log = logging.Logger("server")

// Server is the ScrapBee HTTP API.
type Server struct {
	cfg     *config.Config
	echo    *echo.Echo
	serper  *search.SerperClient
	youtube *search.YouTubeClient
	manager *browser.Manager
}

// New builds the server. When cfg.Server.EnableBrowser is set the
// headless browser is started lazily on the first JS-render crawl.
func New(cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	timeout := time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second
	s := &Server{
		cfg:     cfg,
		echo:    e,
		serper:  search.NewSerperClient(cfg.Search.SerperAPIKey, timeout),
		youtube: search.NewYouTubeClient(cfg.Search.YouTubeAPIKey, timeout),
	}
	if cfg.Server.EnableBrowser {
		s.manager = browser.NewManager()
	}

	e.GET("/healthz", s.handleHealth)
	e.POST("/api/search", s.handleSearch)
	e.POST("/api/search/youtube", s.handleYouTubeSearch)
	e.POST("/api/crawl", s.handleCrawl)
	e.POST("/api/download", s.handleDownload)

	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", s.cfg.Server.ListenAddr)
		errCh <- s.echo.Start(s.cfg.Server.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.manager != nil {
		_ = s.manager.Stop()
	}
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.Limit <= 0 {
		req.Limit = 30
	}

	results, err := s.serper.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleYouTubeSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if req.Limit <= 0 {
		req.Limit = 15
	}

	ctx := c.Request().Context()
	ids, err := s.youtube.SearchVideos(ctx, req.Query, req.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	videos, err := s.youtube.VideoDetails(ctx, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":  req.Query,
		"count":  len(videos),
		"videos": videos,
	})
}

type crawlRequest struct {
	URLs []string `json:"urls"`
	Mode string   `json:"mode"` // "fast" (default) or "render"

	// Optional overrides of the configured crawl options.
	MaxDepth    *int     `json:"max_depth"`
	MaxPages    *int     `json:"max_pages"`
	MaxFiles    *int     `json:"max_files"`
	Extensions  []string `json:"extensions"`
	SameDomain  *bool    `json:"same_domain"`
	UseSitemaps *bool    `json:"use_sitemaps"`
}

func (s *Server) handleCrawl(c echo.Context) error {
	var req crawlRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.URLs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one url is required")
	}

	opts := s.cfg.CrawlOptions()
	if req.MaxDepth != nil {
		opts.MaxDepth = *req.MaxDepth
	}
	if req.MaxPages != nil {
		opts.MaxPages = *req.MaxPages
	}
	if req.MaxFiles != nil {
		opts.MaxFiles = *req.MaxFiles
	}
	if len(req.Extensions) > 0 {
		opts.AllowedExts = req.Extensions
	}
	if req.SameDomain != nil {
		opts.SameDomainOnly = *req.SameDomain
	}
	if req.UseSitemaps != nil {
		opts.UseSitemaps = *req.UseSitemaps
	}

	jobID := uuid.New().String()
	ctx := c.Request().Context()

	var (
		hits []crawl.FileHit
		err  error
	)
	switch req.Mode {
	case "", "fast":
		var crawler *crawl.Crawler
		crawler, err = crawl.New(opts, nil)
		if err == nil {
			hits, err = crawler.Run(ctx, req.URLs)
		}
	case "render":
		if s.manager == nil {
			return echo.NewHTTPError(http.StatusConflict, "server started without browser support")
		}
		if err = s.manager.Start(); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		var rc *browser.RenderCrawler
		rc, err = browser.NewRenderCrawler(s.manager, opts, nil)
		if err == nil {
			hits, err = rc.Run(ctx, req.URLs)
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown mode %q", req.Mode))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	log.Infof("crawl %s: %d urls, %d files", jobID, len(req.URLs), len(hits))
	if hits == nil {
		hits = []crawl.FileHit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"job_id": jobID,
		"count":  len(hits),
		"files":  hits,
	})
}

type downloadRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleDownload(c echo.Context) error {
	var req downloadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.URLs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one url is required")
	}

	zipper := download.NewZipper(download.Options{
		Timeout:   time.Duration(s.cfg.Crawl.TimeoutSeconds) * time.Second,
		Delay:     s.cfg.DownloadDelay(),
		UserAgent: s.cfg.Crawl.UserAgent,
	}, nil)

	data, err := zipper.Download(c.Request().Context(), req.URLs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	filename := fmt.Sprintf("ScrapBee_Files_%s.zip", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/zip", data)
}
